package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorShape(t *testing.T) {
	b, err := json.Marshal(Error("request not found"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"request not found"}`, string(b))
}

func TestPageShape(t *testing.T) {
	b, err := json.Marshal(Page([]string{"a"}, 7, 2, 5))
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":["a"],"total":7,"page":2,"limit":5}`, string(b))
}
