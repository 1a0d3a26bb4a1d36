package dream

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVisualizationURL(t *testing.T) {
	got := VisualizationURL("A CITY at night", "")
	require.True(t, strings.HasPrefix(got, "https://images.pexels.com/photos/1624438/"), got)
	require.True(t, strings.HasSuffix(got, "&style=dreamy"), got)

	fallback := VisualizationURL("an empty room", "noir film")
	require.True(t, strings.HasPrefix(fallback, defaultSceneImage))
	require.True(t, strings.HasSuffix(fallback, "&style=noir+film"), fallback)
}
