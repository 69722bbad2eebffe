package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// PromptToken asks for the catalog read access token. Input is hidden when
// in is a terminal; otherwise one line is read from in.
func PromptToken(in *os.File, out io.Writer) (string, error) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "TMDB Authentication")
	fmt.Fprintln(out, "━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintln(out, "Create a read access token at https://www.themoviedb.org/settings/api")
	fmt.Fprint(out, "Token: ")

	var token string
	if fd := int(in.Fd()); term.IsTerminal(fd) {
		tokenBytes, err := term.ReadPassword(fd)
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		fmt.Fprintln(out) // newline after hidden input
		token = string(tokenBytes)
	} else {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		token = line
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("token cannot be empty")
	}
	return token, nil
}
