package commands

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	test "github.com/liteclaw/mirai/test/helpers"
)

// newGateway starts a mock gateway that accepts auth, verify and release,
// and writes a config pointing at it into a temporary home.
func newGateway(t *testing.T) (*test.MockServer, *test.TempHome) {
	t.Helper()

	ms := test.NewMockServer(t)
	ms.HandleJSON(http.MethodPost, "/auth", http.StatusOK, `{"code":0,"session":"SESSION"}`)
	ms.HandleOK(http.MethodPost, "/verify")
	ms.HandleOK(http.MethodPost, "/release")

	home := test.NewTempHome(t)
	home.WriteConfig(t, fmt.Sprintf(`{
  "gateway": {"url": %q, "authKey": "AUTH", "timeout": "5s"},
  "bot": {"qq": 10001}
}`, ms.URL))

	return ms, home
}

// execute runs cmd with args and returns what it printed.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	b := bytes.NewBufferString("")
	cmd.SetOut(b)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return b.String(), err
}
