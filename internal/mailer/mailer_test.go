package mailer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendRejectsUnknownTemplate(t *testing.T) {
	m := New("localhost", 587, "", "", "noreply@journiq.test")
	err := m.Send("a@b.test", "Hi", "no_such_template", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown email template")
}

func TestSendRejectsBrokenPayload(t *testing.T) {
	m := New("localhost", 587, "", "", "noreply@journiq.test")
	err := m.Send("a@b.test", "Hi", TemplateWelcome, []byte("{not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode payload")
}

func TestBookingUpdateTemplateRendering(t *testing.T) {
	var buf bytes.Buffer
	err := bodies[TemplateBookingUpdate].Execute(&buf, map[string]any{
		"name":       "Noor",
		"message":    "Your booking has been confirmed.",
		"tour_title": "Old Town Walk",
		"day":        "2026-07-19",
		"num_people": 3,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Hi Noor,")
	assert.Contains(t, out, "Your booking has been confirmed.")
	assert.Contains(t, out, "<b>Old Town Walk</b>")
	assert.Contains(t, out, "2026-07-19")
}

func TestTemplatesEscapeHTML(t *testing.T) {
	var buf bytes.Buffer
	err := bodies[TemplateCustom].Execute(&buf, map[string]any{
		"name":    "Noor",
		"message": "<script>alert(1)</script>",
	})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "<script>")
}
