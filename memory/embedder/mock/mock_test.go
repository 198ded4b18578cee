package mock_test

import (
	"context"
	"math"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/dinadyno/persona-chat/memory/embedder/mock"
)

func TestEmbedDeterministic(t *testing.T) {
	e := mock.New()
	ctx := context.Background()

	a, err := e.Embed(ctx, "hello world")
	gt.NoError(t, err).Required()
	b, err := e.Embed(ctx, "hello world")
	gt.NoError(t, err).Required()
	gt.Value(t, a).Equal(b)

	c, err := e.Embed(ctx, "something else")
	gt.NoError(t, err).Required()
	gt.Value(t, len(c)).Equal(e.Dimensions())

	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	gt.Bool(t, same).False()
}

func TestEmbedUnitNorm(t *testing.T) {
	e := mock.New()
	vec, err := e.Embed(context.Background(), "normalize me")
	gt.NoError(t, err).Required()

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	gt.Bool(t, math.Abs(math.Sqrt(norm)-1) < 1e-3).True()
}
