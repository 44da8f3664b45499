package handlers

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/plusone-alumni/plusone/internal/models"
	"github.com/plusone-alumni/plusone/internal/services"
	"github.com/plusone-alumni/plusone/internal/testutil"
)

func decodeOnboarding(t *testing.T, rr *httptest.ResponseRecorder) OnboardingResponse {
	t.Helper()
	var out OnboardingResponse
	testutil.DecodeJSON(t, rr, &out)
	return out
}

func TestOnboardingHandler_Flow(t *testing.T) {
	env := newTestEnv(t)
	user := env.addUser("ann@vanderbilt.edu", "Ann")
	h := NewOnboardingHandler(env.client)

	rr := httptest.NewRecorder()
	h.Get(rr, withUser(httptest.NewRequest(http.MethodGet, "/api/onboarding", nil), user))
	testutil.AssertStatusCode(t, rr, http.StatusOK)
	state := decodeOnboarding(t, rr)
	if state.Step != 1 || state.Progress != 25 || state.Current.Title != "Demographics" || state.CanGoBack {
		t.Fatalf("unexpected initial state %+v", state)
	}
	if state.Options == nil || len(state.Options.States) != 50 || len(state.Options.Interests) != 10 {
		t.Fatalf("expected option lists, got %+v", state.Options)
	}

	profile := state.Profile
	profile.Location.City = "Austin"
	profile.Location.State = "TX"
	profile.Interests = []string{"Hackathons"}

	rr = httptest.NewRecorder()
	h.Next(rr, withUser(testutil.NewTestRequestWithJSON(t, http.MethodPost, "/api/onboarding/next", OnboardingSaveRequest{Step: 1, Profile: profile}), user))
	testutil.AssertStatusCode(t, rr, http.StatusOK)
	state = decodeOnboarding(t, rr)
	if state.Step != 2 || state.Completed || state.Options != nil {
		t.Fatalf("unexpected state after next %+v", state)
	}

	// A reload resumes where the server says.
	rr = httptest.NewRecorder()
	h.Get(rr, withUser(httptest.NewRequest(http.MethodGet, "/api/onboarding", nil), user))
	state = decodeOnboarding(t, rr)
	if state.Step != 2 || state.Profile.Location.City != "Austin" {
		t.Fatalf("expected resume at step 2, got %+v", state)
	}

	rr = httptest.NewRecorder()
	h.Finish(rr, withUser(testutil.NewTestRequestWithJSON(t, http.MethodPost, "/api/onboarding/finish", OnboardingSaveRequest{Step: 4, Profile: state.Profile}), user))
	testutil.AssertStatusCode(t, rr, http.StatusOK)
	state = decodeOnboarding(t, rr)
	if !state.Completed || state.Step != 4 || state.Destination != services.DestinationHome {
		t.Fatalf("unexpected state after finish %+v", state)
	}

	// There is no re-entry once finished, whatever step the client sends.
	for _, save := range []http.HandlerFunc{h.Next, h.Finish} {
		rr = httptest.NewRecorder()
		save(rr, withUser(testutil.NewTestRequestWithJSON(t, http.MethodPost, "/api/onboarding/next", OnboardingSaveRequest{Step: 1, Profile: state.Profile}), user))
		testutil.AssertStatusCode(t, rr, http.StatusConflict)
	}

	rr = httptest.NewRecorder()
	h.Get(rr, withUser(httptest.NewRequest(http.MethodGet, "/api/onboarding", nil), user))
	state = decodeOnboarding(t, rr)
	if !state.Completed || state.Step != 4 {
		t.Fatalf("expected onboarding to stay complete, got %+v", state)
	}
}

func TestOnboardingHandler_RejectsInvalidProfile(t *testing.T) {
	env := newTestEnv(t)
	user := env.addUser("ann@vanderbilt.edu", "Ann")
	h := NewOnboardingHandler(env.client)

	age := 7
	rr := httptest.NewRecorder()
	h.Next(rr, withUser(testutil.NewTestRequestWithJSON(t, http.MethodPost, "/api/onboarding/next", OnboardingSaveRequest{Step: 1, Profile: models.Profile{Age: &age}}), user))
	testutil.AssertStatusCode(t, rr, http.StatusBadRequest)
	testutil.AssertJSONContains(t, rr.Body.Bytes(), "error", services.ErrInvalidAge.Message)
	if env.fake.Hits("PUT /api/users/"+user.UserID+"/profile") != 0 {
		t.Fatal("invalid profile must not be saved")
	}
}

func photoUpload(t *testing.T, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("photo", "me.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	_, _ = part.Write(data)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/onboarding/photo", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestOnboardingHandler_UploadPhoto(t *testing.T) {
	env := newTestEnv(t)
	user := env.addUser("ann@vanderbilt.edu", "Ann")
	h := NewOnboardingHandler(env.client)
	h.now = func() time.Time { return time.UnixMilli(42) }

	var img bytes.Buffer
	if err := png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}

	rr := httptest.NewRecorder()
	h.UploadPhoto(rr, withUser(photoUpload(t, img.Bytes()), user))
	testutil.AssertStatusCode(t, rr, http.StatusOK)
	var photo models.Photo
	testutil.DecodeJSON(t, rr, &photo)
	if photo.Key != "upload-42" || photo.Storage != models.PhotoStorageInline || !strings.HasPrefix(photo.URL, "data:image/jpeg;base64,") {
		t.Fatalf("unexpected photo %+v", photo)
	}

	rr = httptest.NewRecorder()
	h.UploadPhoto(rr, withUser(photoUpload(t, []byte("hello")), user))
	testutil.AssertStatusCode(t, rr, http.StatusBadRequest)

	rr = httptest.NewRecorder()
	h.UploadPhoto(rr, withUser(httptest.NewRequest(http.MethodPost, "/api/onboarding/photo", nil), user))
	testutil.AssertStatusCode(t, rr, http.StatusBadRequest)
}
