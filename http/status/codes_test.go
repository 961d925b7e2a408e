package status

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	require.Equal(t, Status("OK"), Text(OK))
	require.Equal(t, Status("Method Not Allowed"), Text(MethodNotAllowed))
	require.Equal(t, Status("Unknown Status Code"), Text(Code(999)))
}

func TestHTTPError(t *testing.T) {
	err := NewError(GatewayTimeout, "task exceeded its deadline")
	require.EqualError(t, err, "task exceeded its deadline")
	require.Equal(t, GatewayTimeout, err.(HTTPError).Code)
}
