// pkg/model/types.go
package model

import "fmt"

// Missing is the single canonical representation for all "no value" states
// after normalization (empty cells, whitespace, nan/null/n/a spellings).
const Missing = "<NA>"

// Unmapped is the target used when no canonical field could be suggested
// for a source column.
const Unmapped = "unmapped"

// FieldType is the expected type hint attached to a canonical field.
type FieldType string

const (
	TypeText       FieldType = "text"
	TypeNumeric    FieldType = "numeric"
	TypeDate       FieldType = "date"
	TypeIdentifier FieldType = "identifier"
)

// Transformation describes how a mapping suggestion was derived.
type Transformation string

const (
	// TransformDirect means the source name matched a canonical field or
	// synonym exactly after normalization.
	TransformDirect Transformation = "direct"
	// TransformLearned means the mapping came from the learning dictionary.
	TransformLearned Transformation = "learned"
	// TransformFuzzy means the mapping was derived by string similarity.
	TransformFuzzy Transformation = "fuzzy"
)

// MappingRule assigns one source column to at most one canonical field.
// TargetColumn is either a canonical field name, a promoted extra-column
// name, or Unmapped.
type MappingRule struct {
	SourceColumn   string         `json:"source_column"`
	TargetColumn   string         `json:"target_column"`
	Confidence     float64        `json:"confidence"`
	Transformation Transformation `json:"transformation"`
	Learned        bool           `json:"learned"`
}

// RuleType classifies a cleaning rule by the transform it performs.
type RuleType string

const (
	RuleCurrency   RuleType = "currency"
	RulePercentage RuleType = "percentage"
	RulePhone      RuleType = "phone"
	RuleEmail      RuleType = "email"
	RuleDate       RuleType = "date"
	RulePostal     RuleType = "postal"
	RuleCustom     RuleType = "custom"
)

// CleaningRule is a deterministic per-column transform. Promoted rules are
// appended to the learning dictionary and must stay idempotent when
// reapplied on already-clean data.
type CleaningRule struct {
	TargetColumn string   `json:"target_column"`
	RuleType     RuleType `json:"rule_type"`
	Pattern      string   `json:"pattern"`
	Replacement  string   `json:"replacement"`
	Confidence   float64  `json:"confidence"`
	Learned      bool     `json:"learned"`
}

// Stage identifies which part of the pipeline produced a change.
type Stage string

const (
	StageNormalize Stage = "normalize"
	StageTransform Stage = "transform"
	StageDefaults  Stage = "defaults"
	StageFix       Stage = "fix"
)

// ChangeEntry records a single cell mutation made by the cleaning pipeline
// or the fix engine. Cleaning-stage changes are reported, not undoable;
// only targeted fixes carry undo state.
type ChangeEntry struct {
	RowIndex int    `db:"row_index"`
	Column   string `db:"column_name"`
	OldValue string `db:"old_value"`
	NewValue string `db:"new_value"`
	Stage    Stage  `db:"stage"`
	Reason   string `db:"reason"`
}

// IssueKind names a specific, explainable data defect.
type IssueKind string

const (
	IssuePhoneCountryCode  IssueKind = "phone_missing_country_code"
	IssuePhoneFormat       IssueKind = "phone_format"
	IssueEmailSpacing      IssueKind = "email_spacing"
	IssuePostalPlaceholder IssueKind = "postal_placeholder"
	IssueDateNotISO        IssueKind = "date_not_iso"
)

// FixScope selects how far an applied fix reaches.
type FixScope string

const (
	// ScopeRow applies a fix to the single row it was detected on.
	ScopeRow FixScope = "row"
	// ScopeColumn applies a fix to every pending proposal in the same
	// column with the same issue kind.
	ScopeColumn FixScope = "column-bulk"
)

// FixProposal is a targeted repair for one detected defect.
type FixProposal struct {
	ID            string
	RowIndex      int
	Column        string
	Kind          IssueKind
	CurrentValue  string
	ProposedValue string
	Scope         FixScope
	Confidence    float64
	Description   string
}

// ProposalID derives the stable identifier for a detected defect. Within
// one detection pass the (column, row, kind) triple is unique.
func ProposalID(column string, row int, kind IssueKind) string {
	return fmt.Sprintf("%s:%d:%s", column, row, kind)
}

// UndoEntry captures the exact pre-apply state of every cell a fix touched.
// It is consumed exactly once by undo, after which it is removed.
type UndoEntry struct {
	Token          string
	FixIDs         []string
	Column         string
	PreviousValues map[int]string
}
