package domain

// ProblemLevel grades a built-in practice problem.
type ProblemLevel string

const (
	ProblemLevelBeginner     ProblemLevel = "beginner"
	ProblemLevelIntermediate ProblemLevel = "intermediate"
	ProblemLevelAdvanced     ProblemLevel = "advanced"
)

func (l ProblemLevel) String() string { return string(l) }

// Problem is a built-in practice problem from the reference catalog. The
// catalog is static per process and shared across all users.
type Problem struct {
	Question   string       `json:"question"`
	Answer     string       `json:"answer"`
	Difficulty ProblemLevel `json:"difficulty"`
	Category   string       `json:"category"`
}
