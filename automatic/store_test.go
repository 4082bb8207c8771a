package automatic

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.db")
	s, err := OpenResultStore(path)
	require.NoError(t, err)

	require.NoError(t, s.Save("b1", &GameResult{GameID: "g1", Winner: ResultRed, Plies: 41, Opening: []string{"h2e2", "h9g7"}}))
	require.NoError(t, s.Save("b1", &GameResult{GameID: "g2", Winner: ResultDraw, Plies: 200}))
	require.NoError(t, s.Save("b2", &GameResult{GameID: "g1", Winner: ResultBlack, Plies: 12}))
	// same id replaces.
	require.NoError(t, s.Save("b2", &GameResult{GameID: "g1", Winner: ResultRed, Plies: 13}))
	require.NoError(t, s.Close())

	s, err = OpenResultStore(path)
	require.NoError(t, err)
	defer s.Close()

	batches, err := s.Batches()
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b2"}, batches)

	res, err := s.Results("b1")
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, []string{"h2e2", "h9g7"}, res[0].Opening)
	assert.Equal(t, 200, res[1].Plies)
	assert.Empty(t, res[1].Opening)

	res, err = s.Results("b2")
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, ResultRed, res[0].Winner)
}
