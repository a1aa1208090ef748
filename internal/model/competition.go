package model

import (
	"time"

	"gorm.io/datatypes"
)

// 竞赛可见性 / 状态
const (
	CompetitionPublic  = "public"
	CompetitionPrivate = "private"

	CompetitionStatusDraft  = "draft"
	CompetitionStatusOpen   = "open"
	CompetitionStatusClosed = "closed"
)

// 题目类型：前三种与 short_answer 可自动判分，open / scenario 需人工批改
const (
	QuestionSingleChoice   = "single_choice"
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
	QuestionShortAnswer    = "short_answer"
	QuestionOpen           = "open"
	QuestionScenario       = "scenario"
)

// 参赛批改状态：pending → accepted | rejected
const (
	ParticipationPending  = "pending"
	ParticipationAccepted = "accepted"
	ParticipationRejected = "rejected"
)

// 邀请状态：created → used（一次性）
const (
	InvitationCreated = "created"
	InvitationUsed    = "used"
)

// Competition 竞赛（测验/考试）表 — 对应 competitions
type Competition struct {
	CompetitionID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"competition_id"`
	Title          string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Description    string     `gorm:"type:text"                                      json:"description,omitempty"`
	Visibility     string     `gorm:"type:varchar(20);not null;default:'public'"     json:"visibility"`
	IsEntryTest    bool       `gorm:"not null;default:false"                         json:"is_entry_test"`
	Status         string     `gorm:"type:varchar(20);not null;default:'draft'"      json:"status"`
	PassPercentage int        `gorm:"not null;default:50"                            json:"pass_percentage"`
	OpensAt        *time.Time `json:"opens_at,omitempty"`
	ClosesAt       *time.Time `json:"closes_at,omitempty"`
	SoftDeleteModel

	// 关联（按 position 排序预加载）
	Questions []Question `gorm:"foreignKey:CompetitionID;references:CompetitionID" json:"questions,omitempty"`
}

// TableName 指定表名
func (Competition) TableName() string { return "competitions" }

// MaxScore 全部题目满分之和
func (c *Competition) MaxScore() float64 {
	var sum float64
	for _, q := range c.Questions {
		sum += q.MaxPoints
	}
	return sum
}

// Question 竞赛题目表 — 对应 competition_questions
type Question struct {
	QuestionID     string                       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"question_id"`
	CompetitionID  string                       `gorm:"type:uuid;not null;index"                       json:"competition_id"`
	Position       int                          `gorm:"not null;default:0"                             json:"position"`
	Type           string                       `gorm:"type:varchar(30);not null"                      json:"type"`
	Prompt         string                       `gorm:"type:text;not null"                             json:"prompt"`
	Options        datatypes.JSONSlice[string]  `gorm:"type:jsonb"                                     json:"options,omitempty"`
	CorrectOptions IntArray                     `gorm:"type:int[]"                                     json:"correct_options,omitempty"`
	CorrectText    string                       `gorm:"type:text"                                      json:"correct_text,omitempty"`
	MaxPoints      float64                      `gorm:"type:numeric(6,2);not null"                     json:"max_points"`
	BaseModel
}

// TableName 指定表名
func (Question) TableName() string { return "competition_questions" }

// IsAutoGradable 判断题型是否可自动判分
func (q *Question) IsAutoGradable() bool {
	switch q.Type {
	case QuestionSingleChoice, QuestionMultipleChoice, QuestionTrueFalse, QuestionShortAnswer:
		return true
	}
	return false
}

// ParticipationAnswer 单题作答（存于 answers JSONB）
type ParticipationAnswer struct {
	QuestionID string  `json:"question_id"`
	Selected   []int   `json:"selected,omitempty"` // 选择题所选下标
	Text       string  `json:"text,omitempty"`     // 文本作答
	Score      float64 `json:"score"`
	AutoGraded bool    `json:"auto_graded"`
	Corrected  bool    `json:"corrected"` // 已人工批改
}

// Participation 参赛记录表 — 对应 competition_participations
type Participation struct {
	ParticipationID string                                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"participation_id"`
	CompetitionID   string                                   `gorm:"type:uuid;not null;index"                       json:"competition_id"`
	InvitationID    *string                                  `gorm:"type:uuid;uniqueIndex"                          json:"invitation_id,omitempty"`
	ParticipantName string                                   `gorm:"type:varchar(100);not null"                     json:"participant_name"`
	Email           *string                                  `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	ServerID        string                                   `gorm:"type:varchar(50)"                               json:"server_id,omitempty"`
	Answers         datatypes.JSONSlice[ParticipationAnswer] `gorm:"type:jsonb;not null"                            json:"answers"`
	TotalScore      float64                                  `gorm:"type:numeric(8,2);not null;default:0"           json:"total_score"`
	MaxScore        float64                                  `gorm:"type:numeric(8,2);not null;default:0"           json:"max_score"`
	Status          string                                   `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	CorrectedBy     *string                                  `gorm:"type:uuid"                                      json:"corrected_by,omitempty"`
	CorrectedAt     *time.Time                               `json:"corrected_at,omitempty"`
	CandidateID     *string                                  `gorm:"type:uuid"                                      json:"candidate_id,omitempty"`
	SubmittedAt     time.Time                                `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"submitted_at"`

	// 关联
	Competition *Competition `gorm:"foreignKey:CompetitionID;references:CompetitionID" json:"competition,omitempty"`
}

// TableName 指定表名
func (Participation) TableName() string { return "competition_participations" }

// Invitation 私有竞赛邀请表 — 对应 competition_invitations
type Invitation struct {
	InvitationID    string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"invitation_id"`
	CompetitionID   string     `gorm:"type:uuid;not null;index"                       json:"competition_id"`
	CandidateName   string     `gorm:"type:varchar(100);not null"                     json:"candidate_name"`
	Email           *string    `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	LoginIdentifier string     `gorm:"type:varchar(50);not null;uniqueIndex"          json:"login_identifier"`
	PasswordHash    string     `gorm:"type:varchar(255);not null"                     json:"-"`
	Status          string     `gorm:"type:varchar(20);not null;default:'created'"    json:"status"`
	UsedAt          *time.Time `json:"used_at,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Invitation) TableName() string { return "competition_invitations" }
