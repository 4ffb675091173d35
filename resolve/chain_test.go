package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/royhenengel/Bookmark-Knowledge-Base/models"
)

func TestRunChainFirstSuccessWins(t *testing.T) {
	secondRan := false
	stages := []Stage[string]{
		{Name: "PRIMARY", Run: func(ctx context.Context) (string, error) { return "primary-value", nil }},
		{Name: "FALLBACK", Run: func(ctx context.Context) (string, error) {
			secondRan = true
			return "fallback-value", nil
		}},
	}

	value, attempts, chainErr := runChain(context.Background(), stages)
	require.Nil(t, chainErr)
	assert.Equal(t, "primary-value", value)
	assert.False(t, secondRan, "later stages must not run after a success")

	require.Len(t, attempts, 1)
	assert.Equal(t, "PRIMARY", attempts[0].Source)
	assert.Equal(t, models.OutcomeSuccess, attempts[0].Outcome)
	assert.Empty(t, attempts[0].Detail)
}

func TestRunChainFallsThrough(t *testing.T) {
	stages := []Stage[int]{
		{Name: "PRIMARY", Run: func(ctx context.Context) (int, error) { return 0, errors.New("rate limited") }},
		{Name: "FALLBACK", Run: func(ctx context.Context) (int, error) { return 42, nil }},
	}

	value, attempts, chainErr := runChain(context.Background(), stages)
	require.Nil(t, chainErr)
	assert.Equal(t, 42, value)

	require.Len(t, attempts, 2)
	assert.Equal(t, models.OutcomeFailure, attempts[0].Outcome)
	assert.Equal(t, "rate limited", attempts[0].Detail)
	assert.Equal(t, models.OutcomeSuccess, attempts[1].Outcome)
}

func TestRunChainExhausted(t *testing.T) {
	stages := []Stage[string]{
		{Name: "PRIMARY", Run: func(ctx context.Context) (string, error) { return "", errors.New("first failure") }},
		{Name: "FALLBACK", Run: func(ctx context.Context) (string, error) { return "", errors.New("second failure") }},
	}

	value, attempts, chainErr := runChain(context.Background(), stages)
	require.NotNil(t, chainErr)
	assert.Empty(t, value)
	assert.Len(t, attempts, 2)
	assert.Equal(t, attempts, chainErr.Attempts)
	assert.Equal(t, "resolution failed after 2 attempts, last (FALLBACK): second failure", chainErr.Error())
}

func TestChainErrorEmpty(t *testing.T) {
	err := &ChainError{}
	assert.Equal(t, "resolution failed: no stages attempted", err.Error())
}
