package secrets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/mm2ledger/internal/command"
)

func TestResolveEnv(t *testing.T) {
	r := NewResolver(command.NewFake(), nil)

	t.Setenv("MM2LEDGER_TEST_FOO", "")
	_, err := r.Resolve(context.Background(), "env:MM2LEDGER_TEST_FOO")
	require.ErrorIs(t, err, ErrMissingSecret)
	require.Contains(t, err.Error(), "export MM2LEDGER_TEST_FOO=")

	t.Setenv("MM2LEDGER_TEST_FOO", "secret")
	got, err := r.Resolve(context.Background(), "env:MM2LEDGER_TEST_FOO")
	require.NoError(t, err)
	require.Equal(t, "secret", got)
}

func TestResolveOnePassword(t *testing.T) {
	fake := command.NewFake()
	fake.Handle("op", func(call command.Call) (command.Result, error) {
		require.Equal(t, []string{"read", "op://Private/MoneyMoney/password"}, call.Args)
		return command.Result{Stdout: []byte("  hunter2\n")}, nil
	})
	r := NewResolver(fake, nil)

	got, err := r.Resolve(context.Background(), "op://Private/MoneyMoney/password")
	require.NoError(t, err)
	require.Equal(t, "hunter2", got)
}

func TestResolveOnePasswordFailures(t *testing.T) {
	r := NewResolver(command.NewFake(), nil)
	_, err := r.Resolve(context.Background(), "op://vault/item/field")
	require.ErrorIs(t, err, command.ErrToolUnavailable)

	fake := command.NewFake()
	fake.Handle("op", func(command.Call) (command.Result, error) {
		return command.Result{ExitCode: 1, Stderr: []byte("[ERROR] item not found\n")}, nil
	})
	r = NewResolver(fake, nil)
	_, err = r.Resolve(context.Background(), "op://vault/item/field")
	require.ErrorIs(t, err, ErrSecretReadFailed)
	require.Contains(t, err.Error(), "item not found")
}

func TestResolveKeychainAndUnknown(t *testing.T) {
	r := NewResolver(command.NewFake(), nil)

	_, err := r.Resolve(context.Background(), "keychain:MoneyMoney")
	require.ErrorIs(t, err, ErrNotImplemented)

	_, err = r.Resolve(context.Background(), "plaintext-password")
	require.ErrorIs(t, err, ErrInvalidSource)
	require.Contains(t, err.Error(), "env:VAR_NAME")
	require.Contains(t, err.Error(), "op://vault/item/field")
}

func TestResolveStore(t *testing.T) {
	store := &Store{Dir: t.TempDir()}
	r := NewResolver(command.NewFake(), store)

	_, err := r.Resolve(context.Background(), "store:moneymoney")
	require.ErrorIs(t, err, ErrMissingSecret)

	require.NoError(t, store.Set("MoneyMoney", "s3cr3t"))
	got, err := r.Resolve(context.Background(), "store:moneymoney")
	require.NoError(t, err)
	require.Equal(t, "s3cr3t", got)

	require.NoError(t, store.Delete("moneymoney"))
	_, err = r.Resolve(context.Background(), "store:moneymoney")
	require.ErrorIs(t, err, ErrMissingSecret)
}
