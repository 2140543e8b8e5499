package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleSystem.IsValid())
	assert.True(t, RoleUser.IsValid())
	assert.True(t, RoleAssistant.IsValid())
	assert.False(t, Role("tool").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestMode_IsMultiTurn(t *testing.T) {
	assert.True(t, ModeMultiTurn.IsMultiTurn())
	assert.False(t, ModeSingleShot.IsMultiTurn())
	assert.False(t, Mode("MULTI-TURN").IsMultiTurn())
	assert.Equal(t, "multi-turn", DefaultMode.String())
}

// TestChatRequest_Validate tests boundary validation
func TestChatRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ChatRequest
		wantErr bool
	}{
		{
			name: "valid request",
			req:  ChatRequest{Question: "What is X?", StoreIDs: []string{"a_1"}},
		},
		{
			name:    "empty question",
			req:     ChatRequest{Question: "", StoreIDs: []string{"a_1"}},
			wantErr: true,
		},
		{
			name:    "whitespace question",
			req:     ChatRequest{Question: "  \n\t", StoreIDs: []string{"a_1"}},
			wantErr: true,
		},
		{
			name:    "no stores",
			req:     ChatRequest{Question: "What is X?"},
			wantErr: true,
		},
		{
			name:    "blank store id",
			req:     ChatRequest{Question: "What is X?", StoreIDs: []string{"a_1", " "}},
			wantErr: true,
		},
		{
			name: "unknown history role",
			req: ChatRequest{
				Question: "What is X?",
				StoreIDs: []string{"a_1"},
				History:  []Turn{{Role: "robot", Content: "beep"}},
			},
			wantErr: true,
		},
		{
			name: "valid history",
			req: ChatRequest{
				Question: "And Y?",
				StoreIDs: []string{"a_1"},
				History: []Turn{
					{Role: RoleUser, Content: "What is X?"},
					{Role: RoleAssistant, Content: "X is [Page 1]."},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidation))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestChatRequest_ValidateDefaultsMode(t *testing.T) {
	req := ChatRequest{Question: "q", StoreIDs: []string{"s"}}
	require.NoError(t, req.Validate())
	assert.Equal(t, ModeMultiTurn, req.Mode)

	req = ChatRequest{Question: "q", StoreIDs: []string{"s"}, Mode: ModeSingleShot}
	require.NoError(t, req.Validate())
	assert.Equal(t, ModeSingleShot, req.Mode)
}
