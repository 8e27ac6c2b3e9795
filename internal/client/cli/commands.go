package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/session"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	pb "github.com/dmitrijs2005/authkeeper/internal/proto"
)

// report prints err and drops the local session when the server no longer
// accepts the token.
func (a *App) report(err error) error {
	if errors.Is(err, client.ErrUnauthorized) && a.session != nil {
		a.forgetSession()
	}
	fmt.Fprintf(a.out, "Error: %v\n", err)
	return err
}

func (a *App) printUser(u *pb.User) {
	data, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		fmt.Fprintf(a.out, "%+v\n", u)
		return
	}
	fmt.Fprintln(a.out, string(data))
}

func (a *App) Signup(ctx context.Context) error {
	handle, err := GetSimpleText(a.reader, "Login handle (e.g. email)", a.out)
	if err != nil {
		return a.report(err)
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return a.report(err)
	}
	defer common.WipeByteArray(password)

	fields, err := GetFields(a.reader, "Profile fields (display_name is required)", a.out)
	if err != nil {
		return a.report(err)
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	u, err := a.client.Signup(ctx, handle, string(password), fields)
	if err != nil {
		return a.report(err)
	}

	fmt.Fprintf(a.out, "Registered %s (id %s). Use 'login' to start a session.\n", u.LoginHandle, u.ID)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	handle, err := GetSimpleText(a.reader, "Login handle", a.out)
	if err != nil {
		return a.report(err)
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return a.report(err)
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	resp, err := a.client.Login(ctx, handle, string(password))
	if err != nil {
		return a.report(err)
	}

	a.session = &session.Session{
		Endpoint:    a.config.ServerEndpointAddr,
		LoginHandle: handle,
		AccessToken: resp.AccessToken,
		ExpiresAt:   resp.ExpiresAt,
	}
	if err := a.sessions.Save(a.session); err != nil {
		fmt.Fprintf(a.out, "Warning: session not saved: %v\n", err)
	}

	fmt.Fprintf(a.out, "Login successful, session valid until %s\n", resp.ExpiresAt.Local().Format("15:04:05"))
	return nil
}

func (a *App) Me(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	u, err := a.client.Me(ctx)
	if err != nil {
		return a.report(err)
	}
	a.printUser(u)
	return nil
}

func (a *App) Update(ctx context.Context) error {
	fields, err := GetFields(a.reader, "Fields to change (name= clears a field)", a.out)
	if err != nil {
		return a.report(err)
	}
	if len(fields) == 0 {
		fmt.Fprintln(a.out, "Nothing to update")
		return nil
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	u, err := a.client.UpdateProfile(ctx, fields)
	if err != nil {
		return a.report(err)
	}
	a.printUser(u)
	return nil
}

// Avatar asks the server for a presigned URL and uploads a local image to it.
func (a *App) Avatar(ctx context.Context) error {
	path, err := GetSimpleText(a.reader, "Path to image", a.out)
	if err != nil {
		return a.report(err)
	}

	f, err := os.Open(path)
	if err != nil {
		return a.report(err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return a.report(err)
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	key, url, err := a.client.AvatarUploadURL(ctx)
	if err != nil {
		return a.report(err)
	}

	if err := a.upload(ctx, url, mime.TypeByExtension(filepath.Ext(path)), f, info.Size()); err != nil {
		return a.report(err)
	}

	fmt.Fprintf(a.out, "Avatar uploaded as %s\n", key)
	return nil
}

// Logout ends the session on the server and removes the local copy even when
// the server call fails.
func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	err := a.client.Logout(ctx)
	a.forgetSession()
	if err != nil && !errors.Is(err, client.ErrUnauthorized) {
		return a.report(err)
	}

	fmt.Fprintln(a.out, "Logged out")
	return nil
}
