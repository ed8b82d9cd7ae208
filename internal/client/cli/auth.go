package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/fieldworks/fieldsync/internal/client/client"
	"github.com/fieldworks/fieldsync/internal/client/repositories/metadata"
	"github.com/fieldworks/fieldsync/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts the technician for credentials and tries to authenticate.
//
// The method first attempts an online login and caches the resulting identity
// and tokens locally. If the server is unavailable
// (errors.Is(err, client.ErrUnavailable)), it falls back to the cached
// identity from the last successful login, so drafts remain reachable in the
// field. Mode ends up as:
//   - ModeOnline if online login succeeds,
//   - ModeOffline if the cached identity was restored,
//   - ModeDisabled if both fail.
//
// The password is wiped before returning. A nil error does not necessarily
// imply ModeOnline — inspect App.Mode for the final state.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	var (
		actorID string
		mode    Mode
	)

	actorID, err = a.rest.Login(ctx, userName, string(password))
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			log.Printf("Server unavailable, trying offline login...")
			actorID, err = a.restoreCachedIdentity(ctx)
			if err != nil {
				log.Printf("Offline login unsuccessfull: %s", err.Error())
				mode = ModeDisabled
			} else {
				log.Printf("Offline login successfull")
				mode = ModeOffline
			}
		} else {
			log.Printf("Login unsuccessfull: %s", err.Error())
		}
	} else {
		log.Printf("Login successfull")
		mode = ModeOnline
		if err := a.cacheIdentity(ctx); err != nil {
			log.Printf("warning: could not cache session: %s", err.Error())
		}
	}

	a.actorID = actorID
	a.setMode(mode)
	return nil
}

// cacheIdentity stores the actor id and tokens so a later offline start can
// restore the session without the server.
func (a *App) cacheIdentity(ctx context.Context) error {
	access, refresh := a.rest.Tokens()
	if err := a.repos.Metadata.Set(ctx, metadata.KeyActorID, []byte(a.rest.ActorID())); err != nil {
		return err
	}
	if err := a.repos.Metadata.Set(ctx, metadata.KeyAccessToken, []byte(access)); err != nil {
		return err
	}
	return a.repos.Metadata.Set(ctx, metadata.KeyRefreshToken, []byte(refresh))
}

func (a *App) restoreCachedIdentity(ctx context.Context) (string, error) {
	actor, err := a.repos.Metadata.Get(ctx, metadata.KeyActorID)
	if err != nil {
		return "", err
	}
	if len(actor) == 0 {
		return "", fmt.Errorf("no cached session, online login required")
	}

	access, err := a.repos.Metadata.Get(ctx, metadata.KeyAccessToken)
	if err != nil {
		return "", err
	}
	refresh, err := a.repos.Metadata.Get(ctx, metadata.KeyRefreshToken)
	if err != nil {
		return "", err
	}
	if len(access) > 0 {
		// Restored tokens let the first online request after reconnecting
		// go through without a fresh login.
		if err := a.rest.SetTokens(string(access), string(refresh)); err != nil {
			log.Printf("warning: cached token rejected: %s", err.Error())
		}
	}
	return string(actor), nil
}

// Logout clears the cached identity and tokens and closes the current
// editing session. Stored drafts are kept: they belong to the technician and
// survive re-login.
func (a *App) Logout(ctx context.Context) error {
	if err := a.repos.Metadata.Clear(ctx); err != nil {
		return err
	}
	a.actorID = ""
	a.session = nil
	return nil
}
