package transcribe

import "context"

// Fake is an in-memory Backend for tests.
type Fake struct {
	Text  string
	Err   error
	Calls int
	Paths []string
}

func NewFake(text string, err error) *Fake {
	return &Fake{Text: text, Err: err}
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Load(context.Context) error { return nil }

func (f *Fake) Transcribe(_ context.Context, audioPath string) (string, error) {
	f.Calls++
	f.Paths = append(f.Paths, audioPath)
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}
