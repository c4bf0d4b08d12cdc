package services

import (
	"fmt"
	"strconv"
	"strings"

	"standwithnepal-server/models"
	"standwithnepal-server/utils"

	"gorm.io/gorm"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// Predicate is one WHERE fragment with its bind arguments. Forced marks
// predicates injected from the caller's session scope; they are merged with
// client filters by AND and cannot be removed or overridden by input.
type Predicate struct {
	SQL    string
	Args   []interface{}
	Forced bool
}

// IssueFilters holds the normalized client-supplied listing filters.
type IssueFilters struct {
	Category string
	Status   string
	District string
	Limit    int
	Offset   int
}

// NewIssueFilters coerces raw query parameters into valid filters.
// Malformed values fall back to defaults instead of being rejected.
func NewIssueFilters(category, status, district, rawLimit, rawOffset string) IssueFilters {
	limit := defaultListLimit
	if n, err := strconv.Atoi(rawLimit); err == nil && n > 0 {
		limit = n
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	offset := 0
	if n, err := strconv.Atoi(rawOffset); err == nil && n > 0 {
		offset = n
	}

	return IssueFilters{
		Category: strings.TrimSpace(category),
		Status:   strings.TrimSpace(status),
		District: strings.TrimSpace(district),
		Limit:    limit,
		Offset:   offset,
	}
}

// Predicates folds client filters and the session's jurisdiction scope into
// one AND-ed predicate list. Officials always get their district appended,
// plus their ward when their jurisdiction is ward-level.
func (f IssueFilters) Predicates(scope utils.SessionInfo) []Predicate {
	var preds []Predicate

	if f.Category != "" {
		preds = append(preds, Predicate{SQL: "issues.category = ?", Args: []interface{}{f.Category}})
	}
	if f.Status != "" {
		preds = append(preds, Predicate{SQL: "issues.status = ?", Args: []interface{}{f.Status}})
	}
	if f.District != "" {
		preds = append(preds, Predicate{SQL: "issues.district LIKE ?", Args: []interface{}{"%" + f.District + "%"}})
	}

	if scope.IsOfficial() {
		if scope.District != "" {
			preds = append(preds, Predicate{SQL: "issues.district = ?", Args: []interface{}{scope.District}, Forced: true})
		}
		if scope.Jurisdiction == "ward" && scope.WardNo > 0 {
			preds = append(preds, Predicate{SQL: "issues.ward_no = ?", Args: []interface{}{scope.WardNo}, Forced: true})
		}
	}

	return preds
}

// CacheKey serializes the full effective filter set, forced scope included,
// so one jurisdiction's cached page can never be served to another caller.
func (f IssueFilters) CacheKey(scope utils.SessionInfo) string {
	var b strings.Builder
	b.WriteString("issues_list")
	fmt.Fprintf(&b, ":cat=%s:st=%s:dist=%s:l=%d:o=%d", f.Category, f.Status, f.District, f.Limit, f.Offset)
	if scope.IsOfficial() {
		fmt.Fprintf(&b, ":scope=%s/%s/%d", scope.Jurisdiction, scope.District, scope.WardNo)
	}
	return b.String()
}

// ApplyPredicates folds a predicate list into a query.
func ApplyPredicates(tx *gorm.DB, preds []Predicate) *gorm.DB {
	for _, p := range preds {
		tx = tx.Where(p.SQL, p.Args...)
	}
	return tx
}

// IssueRow is the listing row shape: the issue plus the reporter's display
// name and engagement counts.
type IssueRow struct {
	models.Issue
	ReporterName string `json:"reporter_name"`
	Upvotes      int64  `json:"upvotes"`
	Comments     int64  `json:"comments"`
}

const issueRowSelect = `issues.*, users.full_name AS reporter_name,
(SELECT COUNT(*) FROM issue_upvotes WHERE issue_upvotes.issue_id = issues.id AND issue_upvotes.deleted_at IS NULL) AS upvotes,
(SELECT COUNT(*) FROM issue_comments WHERE issue_comments.issue_id = issues.id AND issue_comments.deleted_at IS NULL) AS comments`

// IssueRowQuery starts the listing query. The users join is always present
// so the row shape stays stable; anonymity is applied afterwards.
func IssueRowQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Issue{}).
		Select(issueRowSelect).
		Joins("LEFT JOIN users ON issues.user_id = users.id")
}

// HideAnonymousReporters replaces the reporter name on anonymous issues.
// This runs after the join on every read path, never instead of it.
func HideAnonymousReporters(rows []IssueRow) {
	for i := range rows {
		if rows[i].Anonymous {
			rows[i].ReporterName = "Anonymous"
		}
	}
}

// ListIssues returns one page plus the total matching count. The count
// query reuses the identical predicate list without limit/offset.
func ListIssues(db *gorm.DB, filters IssueFilters, scope utils.SessionInfo) ([]IssueRow, int64, error) {
	preds := filters.Predicates(scope)

	var total int64
	countQuery := ApplyPredicates(db.Model(&models.Issue{}).
		Joins("LEFT JOIN users ON issues.user_id = users.id"), preds)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := []IssueRow{}
	query := ApplyPredicates(IssueRowQuery(db), preds).
		Order("issues.created_at DESC").
		Order("issues.id DESC").
		Limit(filters.Limit).
		Offset(filters.Offset)
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	HideAnonymousReporters(rows)
	return rows, total, nil
}
