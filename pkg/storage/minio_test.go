package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"doc-annotator-go/internal/model"
)

func TestObjectName(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	name := ObjectName(model.Document{ID: 12, Version: 3}, at)
	assert.Equal(t, "documents/12/v3-1700000000123.txt", name)
}
