package models

import (
	"gorm.io/gorm"
)

// Issue categories and lifecycle statuses. Status is an ordered progression
// but transitions are not validated; every change is recorded in
// issue_updates instead.
var (
	IssueCategories = []string{"road", "electricity", "water", "healthcare", "corruption", "education", "environment"}
	IssueSeverities = []string{"low", "medium", "high", "urgent"}
	IssueStatuses   = []string{"new", "acknowledged", "in-progress", "resolved"}
)

type Issue struct {
	gorm.Model
	Title        string   `json:"title" gorm:"size:255"`
	Description  string   `json:"description" gorm:"type:text"`
	Category     string   `json:"category" gorm:"type:varchar(20);index"`
	Severity     string   `json:"severity" gorm:"type:varchar(10);default:'medium'"`
	Status       string   `json:"status" gorm:"type:varchar(20);default:'new';index"`
	ProvinceID   uint     `json:"provinceID"`
	District     string   `json:"district" gorm:"size:100;index"`
	Municipality string   `json:"municipality" gorm:"size:100"`
	WardNo       int      `json:"wardNo" gorm:"index"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	ImagePath    string   `json:"imagePath" gorm:"size:255"`
	VideoPath    string   `json:"videoPath" gorm:"size:255"`
	Anonymous    bool     `json:"anonymous" gorm:"default:false"`
	UserID       *uint    `json:"userID"` // nil when anonymous

	Updates []IssueUpdate `json:"updates,omitempty" gorm:"foreignKey:IssueID;references:ID"`
}

type IssueUpdate struct {
	gorm.Model
	IssueID        uint   `json:"issueID" gorm:"not null;index"`
	UserID         *uint  `json:"userID"`
	UpdateText     string `json:"updateText" gorm:"type:text"`
	UpdateType     string `json:"updateType" gorm:"type:varchar(20);default:'comment'"` // comment, status_change, official_response
	OldStatus      string `json:"oldStatus" gorm:"type:varchar(20)"`
	NewStatus      string `json:"newStatus" gorm:"type:varchar(20)"`
	AttachmentPath string `json:"attachmentPath" gorm:"size:255"`
}

// One upvote per (issue, user) for logged-in callers, one per (issue, ip)
// for anonymous callers. Exactly one of UserID/IPAddress is set per row;
// NULLs keep the other unique index out of play. IP dedup is best effort
// only.
type IssueUpvote struct {
	gorm.Model
	IssueID   uint    `json:"issueID" gorm:"not null;uniqueIndex:idx_issue_user;uniqueIndex:idx_issue_ip"`
	UserID    *uint   `json:"userID" gorm:"uniqueIndex:idx_issue_user"`
	IPAddress *string `json:"ipAddress" gorm:"size:45;uniqueIndex:idx_issue_ip"`
}

type IssueComment struct {
	gorm.Model
	IssueID     uint   `json:"issueID" gorm:"not null;index"`
	UserID      *uint  `json:"userID"`
	CommentText string `json:"commentText" gorm:"type:text"`
	Anonymous   bool   `json:"anonymous" gorm:"default:false"`
	// Moderated means approved for display; fresh comments stay hidden
	// until an admin flips this.
	Moderated bool `json:"moderated" gorm:"default:false;index"`
}
