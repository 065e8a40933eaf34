package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/citizenly/citizenly/internal/middleware"
	"github.com/citizenly/citizenly/internal/model"
)

// InterestServiceInterface は関心プロファイルハンドラーが必要とするサービスインターフェース。
type InterestServiceInterface interface {
	// Read は指定ユーザーの関心プロファイルを返す。行が存在しない場合も空プロファイルを返す。
	Read(ctx context.Context, userID string) (*model.InterestProfile, error)
	// Update は関心プロファイルを部分更新する。
	Update(ctx context.Context, userID string, update model.ProfileUpdate) (*model.InterestProfile, error)
}

// InterestHandler は関心プロファイルのHTTPハンドラー。
type InterestHandler struct {
	service InterestServiceInterface
}

// NewInterestHandler はInterestHandlerを生成する。
func NewInterestHandler(service InterestServiceInterface) *InterestHandler {
	return &InterestHandler{service: service}
}

// profileResponse は関心プロファイルのAPIレスポンス。
type profileResponse struct {
	Subjects          []string `json:"subjects"`
	FollowDistricts   []string `json:"follow_districts"`
	NotificationTypes []string `json:"notification_types"`
}

func toProfileResponse(p *model.InterestProfile) profileResponse {
	return profileResponse{
		Subjects:          p.Subjects,
		FollowDistricts:   p.FollowDistricts,
		NotificationTypes: p.NotificationTypes,
	}
}

// Get は現在のユーザーの関心プロファイルを返す。
// GET /api/interests
func (h *InterestHandler) Get(w http.ResponseWriter, r *http.Request) {
	subjectID, err := middleware.SubjectIDFromContext(r.Context())
	if err != nil {
		handleServiceError(w, model.NewUnauthorizedError())
		return
	}

	profile, err := h.service.Read(r.Context(), subjectID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

// updatableProfileFields は部分更新で受け付けるフィールド名。
var updatableProfileFields = []string{"subjects", "follow_districts", "notification_types"}

// Update は関心プロファイルを部分更新する。
// ボディに現れたフィールドのみ置き換え、現れなかったフィールドは維持する。
// 型が不正なフィールドは全件収集し、1つの検証エラーとして返す。
// PUT /api/interests
func (h *InterestHandler) Update(w http.ResponseWriter, r *http.Request) {
	subjectID, err := middleware.SubjectIDFromContext(r.Context())
	if err != nil {
		handleServiceError(w, model.NewUnauthorizedError())
		return
	}

	// フィールドの有無（部分更新）と型エラーの全件収集のため、
	// 一度RawMessageに受けてからフィールドごとに解析する
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		handleServiceError(w, model.NewInvalidRequestError("リクエストボディの解析に失敗しました。"))
		return
	}

	var update model.ProfileUpdate
	fields := map[string]**[]string{
		"subjects":           &update.Subjects,
		"follow_districts":   &update.FollowDistricts,
		"notification_types": &update.NotificationTypes,
	}

	var badFields []string
	for _, name := range updatableProfileFields {
		msg, ok := raw[name]
		if !ok {
			continue
		}
		var values []string
		if err := json.Unmarshal(msg, &values); err != nil {
			badFields = append(badFields, name)
			continue
		}
		if values == nil {
			// 明示的なnullはフィールド省略と同じ扱い
			continue
		}
		*fields[name] = &values
	}

	if len(badFields) > 0 {
		handleServiceError(w, model.NewValidationError(badFields))
		return
	}

	profile, err := h.service.Update(r.Context(), subjectID, update)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}
