package domain

// Draft is the in-progress compose buffer.
type Draft struct {
	text string
}

func (d *Draft) Set(text string) { d.text = text }

func (d *Draft) Text() string { return d.text }

func (d *Draft) Reset() { d.text = "" }
