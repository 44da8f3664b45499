package handlers

import (
	"net/http"

	"github.com/plusone-alumni/plusone/internal/services"
)

type MyPageHandler struct {
	myPage *services.MyPageService
}

func NewMyPageHandler(myPage *services.MyPageService) *MyPageHandler {
	return &MyPageHandler{myPage: myPage}
}

func (h *MyPageHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	page, err := h.myPage.Load(r.Context(), user.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
