package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttachmentName(t *testing.T) {
	assert.Equal(t, "Moby_Dick_report.pdf", attachmentName("Moby Dick"))
	assert.Equal(t, "evil_report.pdf", attachmentName("../../evil"))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `[{"a":1}]`, stripCodeFence("```json\n[{\"a\":1}]\n```"))
	assert.Equal(t, `[{"a":1}]`, stripCodeFence("```\n[{\"a\":1}]\n```"))
	assert.Equal(t, `[{"a":1}]`, stripCodeFence(`[{"a":1}]`))
}
