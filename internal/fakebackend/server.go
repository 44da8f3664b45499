// Package fakebackend is an in-memory stand-in for the PlusOne REST API. It
// mirrors the production backend's observable behaviour closely enough to
// drive the client end to end in tests and local development.
package fakebackend

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/plusone-alumni/plusone/internal/models"
)

const (
	vanderbiltDomain   = "@vanderbilt.edu"
	maxOnboardingStep  = 4
	recentUsersLimit   = 3
	defaultSearchLimit = 20
	maxSearchLimit     = 50
	timeLayout         = "2006-01-02T15:04:05"
)

type user struct {
	ID           string
	Email        string
	PasswordHash []byte
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	Profile      models.Profile
	Onboarding   models.OnboardingState
}

type connection struct {
	User1, User2 string
}

// Server holds all state behind a single mutex.
type Server struct {
	mu       sync.Mutex
	now      func() time.Time
	users    map[string]*user
	requests map[string]*models.ConnectionRequest
	conns    []connection
	posts    map[string]*models.Post
	postSeq  int
	hits     map[string]int
	app      *fiber.App
}

func New() *Server {
	s := &Server{
		now:      time.Now,
		users:    map[string]*user{},
		requests: map[string]*models.ConnectionRequest{},
		posts:    map[string]*models.Post{},
		hits:     map[string]int{},
	}
	s.app = fiber.New(fiber.Config{DisableStartupMessage: true, Immutable: true})
	s.routes()
	return s
}

// App exposes the fiber application, e.g. for app.Listen.
func (s *Server) App() *fiber.App {
	return s.app
}

// Handler adapts the fiber app to net/http for httptest servers.
func (s *Server) Handler() http.Handler {
	return adaptor.FiberApp(s.app)
}

// Hits reports how many requests reached a method and path such as
// "POST /api/connections/request".
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

func (s *Server) routes() {
	s.app.Use(func(c *fiber.Ctx) error {
		err := c.Next()
		s.mu.Lock()
		s.hits[c.Method()+" "+c.Path()]++
		s.mu.Unlock()
		return err
	})

	api := s.app.Group("/api")

	api.Get("/auth/test", func(c *fiber.Ctx) error {
		return c.SendString("Backend is running!")
	})
	api.Post("/auth/signup", s.signup)
	api.Post("/auth/login", s.login)

	api.Get("/connections/recent-users", s.recentUsers)
	api.Post("/connections/request", s.createRequest)
	api.Post("/connections/accept/:id", s.acceptRequest)
	api.Post("/connections/reject/:id", s.rejectRequest)
	api.Get("/connections/status", s.status)
	api.Get("/connections/pending-requests", s.pendingRequests)

	api.Get("/users/search", s.search)
	api.Get("/users/:id/profile", s.getProfile)
	api.Put("/users/:id/profile", s.updateProfile)

	api.Get("/posts", s.listPosts)
	api.Post("/posts", s.createPost)
	api.Put("/posts/:id", s.updatePost)
	api.Delete("/posts/:id", s.deletePost)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": message})
}

func (s *Server) stamp() string {
	return s.now().UTC().Format(timeLayout)
}

// AddUser seeds a user directly, bypassing signup validation. It panics if
// the password cannot be hashed.
func (s *Server) AddUser(email, password, firstName, lastName string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("fakebackend: hashing password for %s: %v", email, err))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(email, hash, firstName, lastName)
}

func (s *Server) addUserLocked(email string, passwordHash []byte, firstName, lastName string) string {
	id := uuid.NewString()
	s.users[id] = &user{
		ID:           id,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		CreatedAt:    s.now().Add(time.Duration(len(s.users)) * time.Millisecond),
		Profile:      models.DefaultProfile(),
		Onboarding:   models.OnboardingState{Step: 1},
	}
	return id
}

// SetOnboarding overwrites a user's stored progress, e.g. to model a session
// abandoned mid-wizard.
func (s *Server) SetOnboarding(userID string, step int, completed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.Onboarding.Step = step
		u.Onboarding.Completed = completed
	}
}

func (s *Server) signup(c *fiber.Ctx) error {
	var req models.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	switch {
	case !strings.HasSuffix(email, vanderbiltDomain):
		return badRequest(c, "Only Vanderbilt email addresses (@vanderbilt.edu) are allowed")
	case s.userByEmailLocked(email) != nil:
		return badRequest(c, "Email already registered")
	case len(req.Password) < 6:
		return badRequest(c, "Password must be at least 6 characters long")
	case strings.TrimSpace(req.FirstName) == "":
		return badRequest(c, "First name is required")
	case strings.TrimSpace(req.LastName) == "":
		return badRequest(c, "Last name is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.AuthResponse{Message: "Registration failed"})
	}
	id := s.addUserLocked(email, hash, req.FirstName, req.LastName)
	u := s.users[id]
	return c.Status(fiber.StatusCreated).JSON(models.AuthResponse{
		Message:   models.AuthMessageSignupOK,
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	})
}

func (s *Server) login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.userByEmailLocked(strings.ToLower(strings.TrimSpace(req.Email)))
	if u == nil || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.AuthResponse{Message: "Invalid email or password"})
	}
	return c.JSON(models.AuthResponse{
		Message:   models.AuthMessageLoginOK,
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	})
}

func (s *Server) userByEmailLocked(email string) *user {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (s *Server) recentUsers(c *fiber.Ctx) error {
	current := c.Query("currentUserId")

	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]*user, 0, len(s.users))
	for _, u := range s.users {
		if u.ID != current {
			list = append(list, u)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if len(list) > recentUsersLimit {
		list = list[:recentUsersLimit]
	}

	out := make([]models.UserCard, 0, len(list))
	for _, u := range list {
		out = append(out, models.UserCard{
			UserID:    u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			Profile:   u.Profile,
			CreatedAt: u.CreatedAt.UTC().Format(timeLayout),
		})
	}
	return c.JSON(out)
}

func (s *Server) connectedLocked(a, b string) bool {
	for _, conn := range s.conns {
		if (conn.User1 == a && conn.User2 == b) || (conn.User1 == b && conn.User2 == a) {
			return true
		}
	}
	return false
}

func (s *Server) pendingLocked(from, to string) *models.ConnectionRequest {
	for _, r := range s.requests {
		if r.FromUserID == from && r.ToUserID == to && r.Status == models.RequestStatusPending {
			return r
		}
	}
	return nil
}

func (s *Server) createRequest(c *fiber.Ctx) error {
	from := c.Query("fromUserId")
	var req models.CreateConnectionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.users[from] == nil || s.users[req.ToUserID] == nil {
		return badRequest(c, "User not found")
	}
	if strings.TrimSpace(req.Message) == "" {
		return badRequest(c, "Message is required")
	}
	if s.connectedLocked(from, req.ToUserID) {
		return badRequest(c, "Users are already connected")
	}
	if s.pendingLocked(from, req.ToUserID) != nil {
		return badRequest(c, "Connection request already pending")
	}

	now := s.stamp()
	r := &models.ConnectionRequest{
		ID:         uuid.NewString(),
		FromUserID: from,
		ToUserID:   req.ToUserID,
		Message:    req.Message,
		Status:     models.RequestStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.requests[r.ID] = r
	return c.JSON(r)
}

func (s *Server) acceptRequest(c *fiber.Ctx) error {
	return s.resolve(c, models.RequestStatusAccepted)
}

func (s *Server) rejectRequest(c *fiber.Ctx) error {
	return s.resolve(c, models.RequestStatusRejected)
}

func (s *Server) resolve(c *fiber.Ctx, status models.ConnectionRequestStatus) error {
	id := c.Params("id")
	userID := c.Query("userId")

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return badRequest(c, "Connection request not found")
	}
	if r.ToUserID != userID {
		return badRequest(c, "Unauthorized to update this request")
	}
	if r.Status != models.RequestStatusPending {
		return badRequest(c, "Request is not pending")
	}

	r.Status = status
	r.UpdatedAt = s.stamp()
	if status == models.RequestStatusAccepted {
		s.conns = append(s.conns, connection{User1: r.FromUserID, User2: r.ToUserID})
	}
	out := *r
	return c.JSON(out)
}

func (s *Server) status(c *fiber.Ctx) error {
	from, to := c.Query("fromUserId"), c.Query("toUserId")

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.connectedLocked(from, to):
		return c.SendString(string(models.ConnectionStatusFriends))
	case s.pendingLocked(from, to) != nil:
		return c.SendString(string(models.ConnectionStatusPending))
	default:
		return c.SendString(string(models.ConnectionStatusNone))
	}
}

func (s *Server) pendingRequests(c *fiber.Ctx) error {
	userID := c.Query("userId")

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.ConnectionRequest{}
	for _, r := range s.requests {
		if r.ToUserID == userID && r.Status == models.RequestStatusPending {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return c.JSON(out)
}

func (s *Server) profileResponseLocked(u *user) models.ProfileResponse {
	posts := s.postsForLocked(u.ID)
	connections := 0
	for _, conn := range s.conns {
		if conn.User1 == u.ID || conn.User2 == u.ID {
			connections++
		}
	}
	requests := 0
	for _, r := range s.requests {
		if r.ToUserID == u.ID && r.Status == models.RequestStatusPending {
			requests++
		}
	}
	return models.ProfileResponse{
		UserID:           u.ID,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		ConnectionsCount: connections,
		RequestsCount:    requests,
		PostsCount:       len(posts),
		Posts:            posts,
		Profile:          u.Profile,
		Onboarding:       u.Onboarding,
	}
}

func (s *Server) getProfile(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[c.Params("id")]
	if !ok {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	return c.JSON(s.profileResponseLocked(u))
}

func (s *Server) updateProfile(c *fiber.Ctx) error {
	var req models.ProfileUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[c.Params("id")]
	if !ok {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	u.Profile = req.Profile.Normalized()
	if req.Step != nil {
		u.Onboarding.Step = clamp(*req.Step, 1, maxOnboardingStep)
	}
	if req.Completed != nil {
		u.Onboarding.Completed = *req.Completed
		if *req.Completed {
			if u.Onboarding.CompletedAt == nil {
				at := s.stamp()
				u.Onboarding.CompletedAt = &at
			}
		} else {
			u.Onboarding.CompletedAt = nil
		}
	}
	return c.JSON(s.profileResponseLocked(u))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (s *Server) postsForLocked(userID string) []models.Post {
	out := []models.Post{}
	for _, p := range s.posts {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}

func (s *Server) listPosts(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(s.postsForLocked(c.Query("userId")))
}

func (s *Server) createPost(c *fiber.Ctx) error {
	var p models.Post
	if err := c.BodyParser(&p); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.postSeq++
	p.ID = strconv.Itoa(s.postSeq)
	// Sequence keeps ordering stable when posts share a timestamp.
	p.CreatedAt = s.stamp() + "." + leftPad(s.postSeq)
	s.posts[p.ID] = &p
	return c.JSON(p)
}

func leftPad(n int) string {
	str := strconv.Itoa(n)
	for len(str) < 6 {
		str = "0" + str
	}
	return str
}

func (s *Server) updatePost(c *fiber.Ctx) error {
	var p models.Post
	if err := c.BodyParser(&p); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Params("id")
	p.ID = id
	if existing, ok := s.posts[id]; ok && p.CreatedAt == "" {
		p.CreatedAt = existing.CreatedAt
	}
	s.posts[id] = &p
	return c.JSON(p)
}

func (s *Server) deletePost(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.posts, c.Params("id"))
	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) search(c *fiber.Ctx) error {
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	if q == "" {
		return c.JSON([]models.SearchResult{})
	}
	limit := c.QueryInt("limit", defaultSearchLimit)
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := []models.SearchResult{}
	for _, id := range ids {
		u := s.users[id]
		for _, interest := range u.Profile.Interests {
			if strings.Contains(strings.ToLower(interest), q) {
				out = append(out, models.SearchResult{
					ID:              u.ID,
					FirstName:       u.FirstName,
					LastName:        u.LastName,
					Interests:       u.Profile.Interests,
					Job:             models.SearchJob{Title: u.Profile.Job.Title, CompanyName: u.Profile.Job.CompanyName},
					NumConnections:  u.Profile.NumConnections,
					ProfilePhotoURL: u.Profile.ProfilePhoto.URL,
				})
				break
			}
		}
		if len(out) >= limit {
			break
		}
	}
	return c.JSON(out)
}
