package domain

const (
	DefaultNamesCore     = "names"
	DefaultConflictsCore = "possible.conflicts"

	// ConflictSource tags possible.conflicts documents that came from a name request.
	ConflictSource = "NR"
)

// Name state codes carried in name_state_type_cd.
const (
	NameStateApproved              = "A"
	NameStateConditionallyApproved = "C"
	NameStateRejected              = "R"
	NameStateNotExamined           = "NE"
)
