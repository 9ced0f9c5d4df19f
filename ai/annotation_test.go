package ai

import (
	"context"
	"testing"

	"github.com/poiesic/stratum/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotationEncode(t *testing.T) {
	s, err := Annotation{"summary": "short", "insights": []string{"a", "b"}}.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":"short","insights":["a","b"]}`, s)

	s, err = Annotation(nil).Encode()
	require.NoError(t, err)
	assert.Equal(t, "{}", s)

	_, err = Annotation{"bad": make(chan int)}.Encode()
	assert.ErrorIs(t, err, ErrInvalidAnnotation)
}

func TestDecodeAnnotation(t *testing.T) {
	a, err := DecodeAnnotation(`{"summary":"s"}`)
	require.NoError(t, err)
	assert.Equal(t, "s", a["summary"])

	for _, bad := range []string{`[1,2]`, `"text"`, `null`, `{`} {
		_, err := DecodeAnnotation(bad)
		assert.ErrorIs(t, err, ErrInvalidAnnotation, bad)
	}
}

func TestDeriverFunc(t *testing.T) {
	var d Deriver = DeriverFunc(func(ctx context.Context, r *core.NormalizedRecord) (Annotation, error) {
		return Annotation{"id": float64(r.Id)}, nil
	})
	a, err := d.Derive(context.Background(), &core.NormalizedRecord{Id: 7})
	require.NoError(t, err)
	assert.Equal(t, float64(7), a["id"])
}
