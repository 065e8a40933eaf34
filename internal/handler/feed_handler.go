package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/citizenly/citizenly/internal/feed"
	"github.com/citizenly/citizenly/internal/middleware"
	"github.com/citizenly/citizenly/internal/model"
)

// FeedServiceInterface はフィードハンドラーが必要とするサービスインターフェース。
type FeedServiceInterface interface {
	// GetFeed は対象ユーザーのフィードページを返す。
	GetFeed(ctx context.Context, callerID, targetID string, q model.FeedQuery) (*feed.FeedPage, error)
}

// FeedHandler はフィード取得のHTTPハンドラー。
type FeedHandler struct {
	service FeedServiceInterface
}

// NewFeedHandler はFeedHandlerを生成する。
func NewFeedHandler(service FeedServiceInterface) *FeedHandler {
	return &FeedHandler{service: service}
}

// feedItemResponse はフィードアイテムのAPIレスポンス。
type feedItemResponse struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	BillReference string    `json:"bill_reference,omitempty"`
	Summary       string    `json:"summary,omitempty"`
	Districts     []string  `json:"districts"`
	Subjects      []string  `json:"subjects"`
	Importance    int       `json:"importance"`
	ActionAt      time.Time `json:"action_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// feedPageResponse はフィードページのAPIレスポンス。
type feedPageResponse struct {
	Items   []feedItemResponse `json:"items"`
	Total   int                `json:"total"`
	Page    int                `json:"page"`
	HasMore bool               `json:"hasMore"`
}

func toFeedPageResponse(page *feed.FeedPage) feedPageResponse {
	items := make([]feedItemResponse, 0, len(page.Items))
	for _, item := range page.Items {
		districts := item.Districts
		if districts == nil {
			districts = []string{}
		}
		subjects := item.Subjects
		if subjects == nil {
			subjects = []string{}
		}
		items = append(items, feedItemResponse{
			ID:            item.ID,
			Type:          item.Type,
			Title:         item.Title,
			BillReference: item.BillReference,
			Summary:       item.Summary,
			Districts:     districts,
			Subjects:      subjects,
			Importance:    item.Importance,
			ActionAt:      item.ActionAt,
			CreatedAt:     item.CreatedAt,
		})
	}
	return feedPageResponse{
		Items:   items,
		Total:   page.Total,
		Page:    page.Page,
		HasMore: page.HasMore,
	}
}

// GetFeed はパーソナライズドフィードを返す。
// district/subjectパラメータは複数指定でき、指定された場合は
// 保存済みプロファイルのフィルタを上書きする。
// user_idパラメータは管理者のみ有効で、他ユーザーのフィードを閲覧する。
// GET /api/feed
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	subjectID, err := middleware.SubjectIDFromContext(r.Context())
	if err != nil {
		handleServiceError(w, model.NewUnauthorizedError())
		return
	}

	params := r.URL.Query()

	query := model.FeedQuery{
		Type:      params.Get("type"),
		Districts: params["district"],
		Subjects:  params["subject"],
		Search:    params.Get("search"),
	}

	var badParams []string
	query.Importance = parseIntParam(params.Get("importance"), &badParams, "importance")
	query.Page = parseIntParam(params.Get("page"), &badParams, "page")
	query.Limit = parseIntParam(params.Get("limit"), &badParams, "limit")
	if len(badParams) > 0 {
		handleServiceError(w, model.NewValidationError(badParams))
		return
	}

	targetID := params.Get("user_id")

	page, err := h.service.GetFeed(r.Context(), subjectID, targetID, query)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toFeedPageResponse(page))
}

// parseIntParam は非負整数パラメータを解析する。
// 空文字は0（未指定）を返し、解析不能な値はbadParamsに名前を追加する。
func parseIntParam(value string, badParams *[]string, name string) int {
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		*badParams = append(*badParams, name)
		return 0
	}
	return n
}
