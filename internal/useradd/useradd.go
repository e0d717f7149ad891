// Package useradd implements the bootstrap command that adds an account
// directly to the configured user store. HTTP registration needs a logged-in
// caller, so the first account has to be created this way.
package useradd

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/fileshare/internal/common"
	"github.com/dmitrijs2005/fileshare/internal/flagx"
	"github.com/dmitrijs2005/fileshare/internal/server"
	"github.com/dmitrijs2005/fileshare/internal/server/config"
	"github.com/dmitrijs2005/fileshare/internal/server/services"
)

var ErrPasswordMismatch = errors.New("passwords do not match")

// usernameFlag returns the value of -name in args.
func usernameFlag(args []string) string {
	var name string

	fs := flag.NewFlagSet("useradd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&name, "name", "", "username to add")
	_ = fs.Parse(flagx.FilterArgs(args, []string{"-name"}))

	return name
}

// Run asks for any missing credentials and registers the user in the store
// selected by cfg.
func Run(ctx context.Context, cfg *config.Config, args []string, in *bufio.Reader, out io.Writer) error {
	username := usernameFlag(args)
	if username == "" {
		var err error
		if username, err = GetSimpleText(in, "Username", out); err != nil {
			return fmt.Errorf("read username: %w", err)
		}
	}

	pw, err := GetPassword("Enter password: ", out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer common.WipeByteArray(pw)

	confirm, err := GetPassword("Repeat password: ", out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(pw, confirm) {
		return ErrPasswordMismatch
	}

	repo, closer, err := server.OpenUserRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := services.NewAuthService(repo, common.BcryptCost).Register(ctx, username, string(pw)); err != nil {
		return fmt.Errorf("add user %q: %w", username, err)
	}

	fmt.Fprintf(out, "User %q added\n", username)
	return nil
}
