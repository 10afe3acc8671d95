package moneymoney

import (
	"fmt"

	"github.com/jask/mm2ledger/internal/command"
)

const (
	BackendSQLCipher = "sqlcipher"
	BackendSQLite    = "sqlite"
)

// Connection describes how to reach the database.
type Connection struct {
	Backend             string
	Path                string
	Password            string
	CipherCompatibility int
}

// Open returns a Client for conn and a close func. The sqlcipher backend
// holds no resources; the sqlite backend keeps a read-only handle open.
func Open(r command.Runner, conn Connection) (*Client, func() error, error) {
	switch conn.Backend {
	case "", BackendSQLCipher:
		// sqlcipher would create an empty database at a missing path.
		if err := requireDatabase(conn.Path); err != nil {
			return nil, nil, err
		}
		gw := NewSQLCipher(r, conn.Path, conn.Password, conn.CipherCompatibility)
		return NewClient(gw), func() error { return nil }, nil
	case BackendSQLite:
		gw, err := OpenSQLite(conn.Path)
		if err != nil {
			return nil, nil, err
		}
		return NewClient(gw), gw.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown database backend %q (want %s or %s)", conn.Backend, BackendSQLCipher, BackendSQLite)
	}
}
