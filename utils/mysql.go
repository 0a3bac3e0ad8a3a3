package utils

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"webup/wplocal/domain"
)

// MySQLClient talks to the database through the mysql and mysqladmin
// programs, either installed locally or inside a compose service.
type MySQLClient struct {
	Client   domain.Command
	Admin    domain.Command
	Password string
}

func (m *MySQLClient) authenticated(cmd domain.Command) domain.Command {
	if m.Password != "" {
		return cmd.With(fmt.Sprintf("--password=%s", m.Password))
	}
	return cmd
}

func (m *MySQLClient) HasPassword() bool {
	return m.Password != ""
}

func (m *MySQLClient) SetPassword(password string) {
	m.Password = password
}

func (m *MySQLClient) Ping(ctx context.Context) error {
	res, err := runCommand(ctx, m.authenticated(m.Admin).With("ping"), nil)
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("mysqladmin ping failed: %s", strings.TrimSpace(res.Output))
	}
	return nil
}

func (m *MySQLClient) Exec(ctx context.Context, statements string) (string, error) {
	res, err := runCommand(ctx, m.authenticated(m.Client).With("-N", "-B", "-e", statements), nil)
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return res.Output, fmt.Errorf("mysql exited with code %d: %s", res.ExitCode, strings.TrimSpace(res.Output))
	}
	return res.Output, nil
}

func (m *MySQLClient) TableCount(ctx context.Context, database string) (int, error) {
	output, err := m.Exec(ctx, fmt.Sprintf("SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = %s", QuoteString(database)))
	if err != nil {
		return 0, err
	}
	return LastInt(output)
}

func (m *MySQLClient) Import(ctx context.Context, artifact string) ([]string, error) {
	file, err := os.Open(artifact)
	if err != nil {
		return nil, fmt.Errorf("Unable to open the import file: %w", err)
	}
	defer file.Close()

	res, err := runCommand(ctx, m.authenticated(m.Client), file)
	if err != nil {
		return nil, err
	}

	var errorLines []string
	for _, line := range res.Lines() {
		if strings.Contains(line, "ERROR") {
			errorLines = append(errorLines, line)
		}
	}
	if !res.Success() && len(errorLines) == 0 {
		errorLines = append(errorLines, fmt.Sprintf("mysql exited with code %d", res.ExitCode))
	}
	return errorLines, nil
}

// QuoteIdentifier quotes a database, table or column name.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QuoteString quotes a SQL string literal.
func QuoteString(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `'`, `\'`)
	return "'" + value + "'"
}

// LastInt parses the last non blank line of a batch mode output.
func LastInt(output string) (int, error) {
	lines := domain.Result{Output: output}.Lines()
	if len(lines) == 0 {
		return 0, fmt.Errorf("empty output, expected a number")
	}
	n, err := strconv.Atoi(strings.TrimSpace(lines[len(lines)-1]))
	if err != nil {
		return 0, fmt.Errorf("unexpected output %q: %w", lines[len(lines)-1], err)
	}
	return n, nil
}
