// Copyright 2026 CareOps
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package generations

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/careops/notebridge/internal/adapter"
	"github.com/careops/notebridge/internal/scrape"
	"github.com/careops/notebridge/internal/transport"
)

// Authenticate reproduces the portal's browser login sequence:
//
//  1. fetch the login page and scrape its anti-forgery token,
//  2. pre-login through the AJAX endpoint,
//  3. post credentials to the primary login endpoint with redirects
//     disabled,
//  4. accept only a redirect whose target contains the post-login path,
//     then follow it explicitly.
//
// Cookies from every response are merged into the session as they
// arrive; the scraped token ends up in the session's csrf slot.
func (a *Adapter) Authenticate(ctx context.Context, creds adapter.Credentials) error {
	if creds.Username == "" || creds.Password == "" {
		return a.authError("username and password are required", 0, nil)
	}
	if creds.BaseURL != "" {
		a.baseURL = strings.TrimRight(creds.BaseURL, "/")
	}

	a.state = stateUnauthenticated
	a.session.Clear()

	// Step 1: login page and token scrape.
	token, err := a.fetchLoginToken(ctx)
	if err != nil {
		return err
	}
	a.state = stateTokenAcquired

	// Step 2: AJAX pre-login.
	if err := a.multilogin(ctx, creds, token); err != nil {
		return err
	}

	// Step 3 and 4: primary login, success judged by redirect target.
	if err := a.primaryLogin(ctx, creds, token); err != nil {
		return err
	}

	a.session.SetToken(tokenSlot, token)
	a.state = stateLoggedIn
	a.logger.Info("authenticated", slog.String("username", creds.Username))
	return nil
}

// fetchLoginToken fetches the login page, merges its cookies, and
// scrapes the anti-forgery token. Token absence is a structural failure
// of the page shape and is never retried.
func (a *Adapter) fetchLoginToken(ctx context.Context) (string, error) {
	resp, err := a.client.Do(ctx, &transport.Request{
		Method:          "GET",
		URL:             a.url(loginPagePath),
		FollowRedirects: true,
	})
	if err != nil {
		return "", a.netError("login page fetch", err)
	}
	a.session.UpdateCookies(resp.Cookies)

	token, ok := scrape.Token(resp.Text())
	if !ok {
		return "", a.authError("login page carried no anti-forgery token", resp.Status, nil)
	}
	return token, nil
}

// multiloginResponse is the structured payload the AJAX endpoint may
// return. Non-JSON responses are tolerated and treated as success.
type multiloginResponse struct {
	Success *bool    `json:"success"`
	Errors  []string `json:"errors"`
}

func (a *Adapter) multilogin(ctx context.Context, creds adapter.Credentials, token string) error {
	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)
	form.Set(scrape.PrimaryTokenField, token)

	resp, err := a.client.Do(ctx, &transport.Request{
		Method:      "POST",
		URL:         a.url(multiloginPath),
		Body:        []byte(form.Encode()),
		ContentType: "application/x-www-form-urlencoded",
		Headers: map[string]string{
			"X-Requested-With": "XMLHttpRequest",
			"Referer":          a.url(loginPagePath),
		},
		Cookies:         a.session.Cookies(),
		FollowRedirects: true,
	})
	if err != nil {
		return a.netError("pre-login", err)
	}
	a.session.UpdateCookies(resp.Cookies)

	var payload multiloginResponse
	if resp.JSON(&payload) && payload.Success != nil && !*payload.Success {
		msg := "pre-login rejected"
		if len(payload.Errors) > 0 {
			msg = fmt.Sprintf("pre-login rejected: %s", strings.Join(payload.Errors, "; "))
		}
		return a.authError(msg, resp.Status, nil)
	}
	return nil
}

func (a *Adapter) primaryLogin(ctx context.Context, creds adapter.Credentials, token string) error {
	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)
	form.Set(scrape.PrimaryTokenField, token)

	loginURL := fmt.Sprintf("%s?ts=%d", a.url(loginPath), a.now().Unix())
	resp, err := a.client.Do(ctx, &transport.Request{
		Method:      "POST",
		URL:         loginURL,
		Body:        []byte(form.Encode()),
		ContentType: "application/x-www-form-urlencoded",
		Headers: map[string]string{
			"Referer": a.url(loginPagePath),
		},
		Cookies:         a.session.Cookies(),
		FollowRedirects: false,
	})
	if err != nil {
		return a.netError("login", err)
	}
	a.session.UpdateCookies(resp.Cookies)

	if !resp.IsRedirect() {
		return a.authError(
			fmt.Sprintf("login did not redirect (status %d); credentials likely rejected", resp.Status),
			resp.Status, nil)
	}

	location := resp.Location()
	if !strings.Contains(location, postLoginPath) {
		return a.authError(
			fmt.Sprintf("login redirected to %q instead of the dashboard", location),
			resp.Status, nil)
	}

	// Follow the redirect explicitly to pick up the final session cookies.
	final, err := a.client.Do(ctx, &transport.Request{
		Method:          "GET",
		URL:             a.resolve(location),
		Cookies:         a.session.Cookies(),
		FollowRedirects: true,
	})
	if err != nil {
		return a.netError("post-login redirect", err)
	}
	a.session.UpdateCookies(final.Cookies)
	return nil
}
