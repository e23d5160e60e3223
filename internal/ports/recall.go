package ports

// Recaller is the prompt's input-history widget: pulled command lines are
// appended to it one at a time, oldest first.
type Recaller interface {
	AppendString(line string) error
}
