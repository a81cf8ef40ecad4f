// Package progress derives a student's learning state from which gating
// tests they have completed. Nothing here is persisted.
package progress

// State is a student's position in the pre-test → topics → post-test flow.
type State string

const (
	NotStarted  State = "NOT_STARTED"
	PreTestDone State = "PRE_TEST_DONE"
	Complete    State = "COMPLETE"
)

// Derive maps test-result existence to a State.
// A post-test result without a pre-test result cannot be produced through the
// submission path; it is reported as NotStarted so gating stays closed.
func Derive(hasPreTest, hasPostTest bool) State {
	switch {
	case hasPreTest && hasPostTest:
		return Complete
	case hasPreTest:
		return PreTestDone
	default:
		return NotStarted
	}
}

// TopicsUnlocked reports whether tutorials and practice quizzes are open.
func (s State) TopicsUnlocked() bool { return s == PreTestDone || s == Complete }

// PostTestUnlocked reports whether a post-test submission would be accepted.
func (s State) PostTestUnlocked() bool { return s == PreTestDone }

// View is the progress payload returned to clients.
type View struct {
	StudentID         string `json:"studentId"`
	State             State  `json:"state"`
	PreTestCompleted  bool   `json:"preTestCompleted"`
	PostTestCompleted bool   `json:"postTestCompleted"`
	TopicsUnlocked    bool   `json:"topicsUnlocked"`
	PostTestUnlocked  bool   `json:"postTestUnlocked"`
	PreTestScore      *int   `json:"preTestScore,omitempty"`
	PostTestScore     *int   `json:"postTestScore,omitempty"`
}

// NewView builds a View from the two optional raw scores; nil means the test
// has not been taken.
func NewView(studentID string, preScore, postScore *int) View {
	st := Derive(preScore != nil, postScore != nil)
	return View{
		StudentID:         studentID,
		State:             st,
		PreTestCompleted:  preScore != nil,
		PostTestCompleted: postScore != nil,
		TopicsUnlocked:    st.TopicsUnlocked(),
		PostTestUnlocked:  st.PostTestUnlocked(),
		PreTestScore:      preScore,
		PostTestScore:     postScore,
	}
}
