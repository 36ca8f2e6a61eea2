package timeout

// Responses holds free-text answers keyed by prompt index. An absent key
// means the prompt was never answered; an empty string is still an answer.
type Responses struct {
	byIndex map[int]string
}

func NewResponses() *Responses {
	return &Responses{byIndex: make(map[int]string)}
}

// Set records text for a prompt index. Other indices are never touched.
func (r *Responses) Set(index int, text string) {
	r.byIndex[index] = text
}

func (r *Responses) Get(index int) (string, bool) {
	text, ok := r.byIndex[index]
	return text, ok
}

// Answered counts the prompt indices with a recorded response.
func (r *Responses) Answered() int {
	return len(r.byIndex)
}

// Snapshot returns a copy of the underlying map, safe to hand out.
func (r *Responses) Snapshot() map[int]string {
	out := make(map[int]string, len(r.byIndex))
	for i, text := range r.byIndex {
		out[i] = text
	}
	return out
}
