package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/idw-coder/quizterm/internal/cache"
)

// Category is one quiz category.
type Category struct {
	ID           int    `json:"id"`
	CategoryName string `json:"category_name"`
	Description  string `json:"description"`
}

// Quiz is one multiple-choice question.
type Quiz struct {
	ID         int    `json:"id"`
	CategoryID int    `json:"category_id"`
	Question   string `json:"question"`
}

// Choice is one answer option for a quiz.
type Choice struct {
	ID        int    `json:"id"`
	QuizID    int    `json:"quiz_id"`
	Text      string `json:"choice_text"`
	IsCorrect bool   `json:"is_correct"`
}

// QuizWithChoices bundles a quiz with its answer options.
type QuizWithChoices struct {
	Quiz    Quiz     `json:"quiz"`
	Choices []Choice `json:"choices"`
}

// Tag labels quizzes across categories.
type Tag struct {
	ID      int    `json:"id"`
	TagName string `json:"tag_name"`
	Slug    string `json:"slug"`
}

// QuizFilter narrows a quizzes-by-category listing. Zero values mean
// "no filter"; Page is 1-based.
type QuizFilter struct {
	Page    int
	TagID   int
	Keyword string
}

// CatalogClient reads the quiz catalog: categories, quizzes, choices,
// tags. It never validates answers — correctness comes back with the
// choices and is checked client-side. The category list changes rarely
// and is read on almost every screen, so it sits behind the staleness
// cache.
type CatalogClient struct {
	c          *Client
	categories *cache.Cache[[]Category]
}

// NewCatalogClient creates a catalog client over the shared HTTP core.
func NewCatalogClient(c *Client) *CatalogClient {
	return &CatalogClient{
		c:          c,
		categories: cache.New[[]Category](cache.DefaultTTL),
	}
}

// Categories returns all quiz categories, served from cache within the
// staleness window.
func (cc *CatalogClient) Categories(ctx context.Context) ([]Category, error) {
	if cats, ok := cc.categories.Get(cache.KeyCategories); ok {
		return cats, nil
	}
	var out []Category
	if err := cc.c.get(ctx, "/quiz-categories", nil, &out); err != nil {
		return nil, err
	}
	cc.categories.Put(cache.KeyCategories, out)
	return out, nil
}

// QuizzesByCategory lists a category's quizzes with choices, optionally
// filtered by page, tag and keyword.
func (cc *CatalogClient) QuizzesByCategory(ctx context.Context, categoryID int, f QuizFilter) ([]QuizWithChoices, error) {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.TagID > 0 {
		q.Set("tag_id", strconv.Itoa(f.TagID))
	}
	if f.Keyword != "" {
		q.Set("keyword", f.Keyword)
	}

	var out []QuizWithChoices
	path := fmt.Sprintf("/quiz-categories/%d/quizzes", categoryID)
	if err := cc.c.get(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RandomQuizzes returns up to count random quizzes from the category.
// A non-empty ids list restricts the draw to those quizzes, which is how
// the review-mistakes flow replays a wrong set.
func (cc *CatalogClient) RandomQuizzes(ctx context.Context, categoryID, count int, ids []int) ([]QuizWithChoices, error) {
	q := url.Values{}
	q.Set("count", strconv.Itoa(count))
	if len(ids) > 0 {
		parts := make([]string, 0, len(ids))
		for _, id := range ids {
			parts = append(parts, strconv.Itoa(id))
		}
		q.Set("ids", strings.Join(parts, ","))
	}

	var out []QuizWithChoices
	path := fmt.Sprintf("/quiz-categories/%d/quizzes/random", categoryID)
	if err := cc.c.get(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Tags returns all quiz tags.
func (cc *CatalogClient) Tags(ctx context.Context) ([]Tag, error) {
	var out []Tag
	if err := cc.c.get(ctx, "/quiz-tags", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TagsByCategory returns the tags in use within one category, which is
// the set worth offering as a quiz-list filter.
func (cc *CatalogClient) TagsByCategory(ctx context.Context, categoryID int) ([]Tag, error) {
	var out []Tag
	path := fmt.Sprintf("/quiz-categories/%d/tags", categoryID)
	if err := cc.c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTag adds a new tag. Requires the manage-tags capability
// server-side; the client just forwards the call.
func (cc *CatalogClient) CreateTag(ctx context.Context, name, slug string) (Tag, error) {
	var out Tag
	err := cc.c.post(ctx, "/quiz-tags", map[string]string{"tag_name": name, "slug": slug}, &out)
	return out, err
}

// UpdateTag renames a tag.
func (cc *CatalogClient) UpdateTag(ctx context.Context, id int, name, slug string) (Tag, error) {
	var out Tag
	err := cc.c.put(ctx, fmt.Sprintf("/quiz-tags/%d", id), map[string]string{"tag_name": name, "slug": slug}, &out)
	return out, err
}

// DeleteTag removes a tag.
func (cc *CatalogClient) DeleteTag(ctx context.Context, id int) error {
	return cc.c.delete(ctx, fmt.Sprintf("/quiz-tags/%d", id), nil)
}
