package operation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantKind Kind
		wantName string
		wantErr  bool
	}{
		{
			name:     "named query",
			doc:      `query GetUser($id: ID!) { user(id: $id) { name } }`,
			wantKind: KindQuery,
			wantName: "GetUser",
		},
		{
			name:     "anonymous query shorthand",
			doc:      `{ users { id } }`,
			wantKind: KindQuery,
		},
		{
			name:     "mutation",
			doc:      `mutation($email: String!, $password: String!) { signIn(email: $email, password: $password) { token } }`,
			wantKind: KindMutation,
		},
		{
			name:     "subscription",
			doc:      `subscription OnLabelCreated($projectID: ID!) { labelCreated(projectID: $projectID) { id } }`,
			wantKind: KindSubscription,
			wantName: "OnLabelCreated",
		},
		{
			name:    "syntax error",
			doc:     `query {`,
			wantErr: true,
		},
		{
			name:    "no operations",
			doc:     `fragment F on User { id }`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := Inspect(tt.doc)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, info.Kind)
			assert.Equal(t, tt.wantName, info.Name)
		})
	}
}

func TestIsSubscription(t *testing.T) {
	assert.True(t, IsSubscription(`subscription { tick }`))
	assert.False(t, IsSubscription(`query { users { id } }`))
	assert.False(t, IsSubscription(`not graphql`))
}
