package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLines(t *testing.T) {
	text := "  Manhattan \n\n\t\nYear Built\r\n  1931\n   \nFloors"

	got := Lines(text)

	assert.Equal(t, []string{"Manhattan", "Year Built", "1931", "Floors"}, got)
}

func TestLines_Empty(t *testing.T) {
	assert.Empty(t, Lines(""))
	assert.Empty(t, Lines(" \n\t\n  "))
}

func TestLines_NeverBlankAndOrderPreserved(t *testing.T) {
	inputs := []string{
		"a\n\nb\n c \n\n\nd",
		"\n\n\nonly\n\n",
		"x\r\n\r\ny",
		strings.Repeat("line\n \n", 20),
	}

	for _, in := range inputs {
		got := Lines(in)
		var want []string
		for _, raw := range strings.Split(in, "\n") {
			if s := strings.TrimSpace(raw); s != "" {
				want = append(want, s)
			}
		}
		assert.Equal(t, want, got)
		for _, l := range got {
			assert.NotEmpty(t, strings.TrimSpace(l))
		}
	}
}

func TestViewLines_Cached(t *testing.T) {
	v := &View{Text: "a\nb"}
	first := v.Lines()
	v.Text = "changed"
	assert.Equal(t, first, v.Lines())
}
