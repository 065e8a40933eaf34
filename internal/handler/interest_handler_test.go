package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/citizenly/citizenly/internal/middleware"
	"github.com/citizenly/citizenly/internal/model"
)

type mockInterestService struct {
	readFn   func(ctx context.Context, userID string) (*model.InterestProfile, error)
	updateFn func(ctx context.Context, userID string, update model.ProfileUpdate) (*model.InterestProfile, error)
	lastUpdate model.ProfileUpdate
}

func (m *mockInterestService) Read(ctx context.Context, userID string) (*model.InterestProfile, error) {
	if m.readFn != nil {
		return m.readFn(ctx, userID)
	}
	return model.EmptyInterestProfile(userID), nil
}

func (m *mockInterestService) Update(ctx context.Context, userID string, update model.ProfileUpdate) (*model.InterestProfile, error) {
	m.lastUpdate = update
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, update)
	}
	profile := model.EmptyInterestProfile(userID)
	if update.Subjects != nil {
		profile.Subjects = *update.Subjects
	}
	if update.FollowDistricts != nil {
		profile.FollowDistricts = *update.FollowDistricts
	}
	if update.NotificationTypes != nil {
		profile.NotificationTypes = *update.NotificationTypes
	}
	return profile, nil
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(middleware.ContextWithSubjectID(req.Context(), "user-1"))
}

func TestInterestGet_EmptyProfile_ReturnsEmptyArrays(t *testing.T) {
	h := NewInterestHandler(&mockInterestService{})

	w := httptest.NewRecorder()
	h.Get(w, authedRequest(http.MethodGet, "/api/interests", ""))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	// 行が存在しなくてもnullではなく空配列が返る
	body := strings.TrimSpace(w.Body.String())
	for _, field := range []string{`"subjects":[]`, `"follow_districts":[]`, `"notification_types":[]`} {
		if !strings.Contains(body, field) {
			t.Errorf("body %q should contain %q", body, field)
		}
	}
}

func TestInterestGet_NoSubject_Returns401(t *testing.T) {
	h := NewInterestHandler(&mockInterestService{})

	w := httptest.NewRecorder()
	h.Get(w, httptest.NewRequest(http.MethodGet, "/api/interests", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestInterestUpdate_PartialBody_OnlySuppliedFieldsSet(t *testing.T) {
	service := &mockInterestService{}
	h := NewInterestHandler(service)

	w := httptest.NewRecorder()
	h.Update(w, authedRequest(http.MethodPut, "/api/interests", `{"subjects":["economy"]}`))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	if service.lastUpdate.Subjects == nil {
		t.Fatal("subjects should be set")
	}
	if service.lastUpdate.FollowDistricts != nil || service.lastUpdate.NotificationTypes != nil {
		t.Error("omitted fields must stay nil (not updated)")
	}
}

func TestInterestUpdate_WrongFieldTypes_AllCollected(t *testing.T) {
	service := &mockInterestService{}
	h := NewInterestHandler(service)

	w := httptest.NewRecorder()
	h.Update(w, authedRequest(http.MethodPut, "/api/interests",
		`{"subjects":"economy","follow_districts":7,"notification_types":["vote_result"]}`))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var body struct {
		Code    string   `json:"code"`
		Details []string `json:"details"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Code != model.ErrCodeValidationFailed {
		t.Errorf("code = %q", body.Code)
	}
	// 不正な型のフィールドが全件列挙される
	if len(body.Details) != 2 {
		t.Fatalf("details = %v, want both bad fields", body.Details)
	}
	if body.Details[0] != "subjects" || body.Details[1] != "follow_districts" {
		t.Errorf("details = %v, want [subjects follow_districts]", body.Details)
	}

	if service.lastUpdate.Subjects != nil || service.lastUpdate.NotificationTypes != nil {
		t.Error("service must not be called on shape errors")
	}
}

func TestInterestUpdate_InvalidTags_ServiceErrorPassedThrough(t *testing.T) {
	service := &mockInterestService{
		updateFn: func(ctx context.Context, userID string, update model.ProfileUpdate) (*model.InterestProfile, error) {
			return nil, model.NewValidationError([]string{"not_a_type"})
		},
	}
	h := NewInterestHandler(service)

	w := httptest.NewRecorder()
	h.Update(w, authedRequest(http.MethodPut, "/api/interests",
		`{"notification_types":["bill_introduced","not_a_type"]}`))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var body struct {
		Details []string `json:"details"`
	}
	json.NewDecoder(w.Body).Decode(&body)
	if len(body.Details) != 1 || body.Details[0] != "not_a_type" {
		t.Errorf("details = %v, want [not_a_type]", body.Details)
	}
}

func TestInterestUpdate_MalformedJSON_Returns400(t *testing.T) {
	h := NewInterestHandler(&mockInterestService{})

	w := httptest.NewRecorder()
	h.Update(w, authedRequest(http.MethodPut, "/api/interests", "{broken"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestInterestUpdate_NullField_TreatedAsOmitted(t *testing.T) {
	service := &mockInterestService{}
	h := NewInterestHandler(service)

	w := httptest.NewRecorder()
	h.Update(w, authedRequest(http.MethodPut, "/api/interests",
		`{"subjects":null,"follow_districts":["3"]}`))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if service.lastUpdate.Subjects != nil {
		t.Error("null field must be treated as omitted")
	}
	if service.lastUpdate.FollowDistricts == nil {
		t.Error("follow_districts should be set")
	}
}
