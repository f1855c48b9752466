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

	"github.com/careops/notebridge/internal/adapter"
	"github.com/careops/notebridge/internal/log"
	"github.com/careops/notebridge/internal/record"
	"github.com/careops/notebridge/internal/retry"
	"github.com/careops/notebridge/internal/scrape"
	"github.com/careops/notebridge/internal/transport"
)

// responsePreviewLimit bounds how much of a rejection body ends up in
// error messages.
const responsePreviewLimit = 300

// PostVisitNote submits the record as a visit note, wrapped in the
// retry policy. Only network and server failures are retried;
// authentication failures require a fresh login, not a retry.
//
// One Result is produced per attempt sequence. On failure paths where an
// outbound payload was constructed, the Result is returned alongside the
// error so callers can audit exactly what was sent.
func (a *Adapter) PostVisitNote(ctx context.Context, rec record.VisitRecord) (*adapter.Result, error) {
	if a.state != stateLoggedIn {
		return nil, a.authError("not logged in; authenticate first", 0, nil)
	}

	var result *adapter.Result
	err := a.policy.Execute(ctx, func(ctx context.Context) error {
		res, err := a.submitOnce(ctx, rec)
		if res != nil {
			result = res
		}
		return err
	}, func(err error) bool {
		return retry.IsNetworkError(err) || retry.IsServerError(err)
	})

	if err != nil {
		a.logger.Warn("submission failed",
			slog.String(log.VisitIDKey, rec.VisitID),
			log.Error(err))
		return result, err
	}

	a.logger.Info("submission accepted", slog.String(log.VisitIDKey, rec.VisitID))
	return result, nil
}

// submitOnce performs one full submission attempt: token refresh, expiry
// detection, form post.
func (a *Adapter) submitOnce(ctx context.Context, rec record.VisitRecord) (*adapter.Result, error) {
	// Tokens rotate per page view, so re-fetch the scheduling page for a
	// fresh one. Redirects stay disabled: a redirect here means the
	// session is gone, not that the page moved.
	page, err := a.client.Do(ctx, &transport.Request{
		Method:          "GET",
		URL:             a.url(schedulingPath),
		Cookies:         a.session.Cookies(),
		FollowRedirects: false,
	})
	if err != nil {
		return nil, a.netError("scheduling page fetch", err)
	}
	a.session.UpdateCookies(page.Cookies)

	if sessionLost(page) {
		// The portal issues no explicit "session expired" response; a
		// second probe against an authenticated-only page confirms the
		// loss before we give up.
		probe, err := a.client.Do(ctx, &transport.Request{
			Method:          "GET",
			URL:             a.url(dashboardPath),
			Cookies:         a.session.Cookies(),
			FollowRedirects: false,
		})
		if err != nil {
			return nil, a.netError("dashboard probe", err)
		}
		a.session.UpdateCookies(probe.Cookies)

		if sessionLost(probe) {
			a.state = stateExpired
			return nil, a.authError(
				fmt.Sprintf("session expired (scheduling status %d, dashboard status %d)",
					page.Status, probe.Status),
				page.Status, nil)
		}
	} else if token, ok := scrape.Token(page.Text()); ok {
		a.session.SetToken(tokenSlot, token)
	}

	token, ok := a.session.Token(tokenSlot)
	if !ok {
		return nil, a.authError("no usable anti-forgery token; re-authentication required", 0, nil)
	}

	form, err := a.Transform(rec)
	if err != nil {
		return nil, &adapter.Error{
			Kind:    adapter.KindValidation,
			Vendor:  VendorID,
			Message: fmt.Sprintf("cannot transform record: %s", err.Error()),
			Cause:   err,
		}
	}
	form.Set(scrape.PrimaryTokenField, token)
	payload := form.Encode()

	resp, err := a.client.Do(ctx, &transport.Request{
		Method:      "POST",
		URL:         a.url(noteAddPath),
		Body:        []byte(payload),
		ContentType: "application/x-www-form-urlencoded",
		Headers: map[string]string{
			"Referer": a.url(schedulingPath),
			"Origin":  a.baseURL,
		},
		Cookies:         a.session.Cookies(),
		FollowRedirects: true,
	})
	if err != nil {
		return nil, a.netError("note submission", err)
	}
	a.session.UpdateCookies(resp.Cookies)

	result := &adapter.Result{
		VisitID:   rec.VisitID,
		Timestamp: a.now(),
		Request:   payload,
		Response:  resp.Text(),
	}

	switch {
	case resp.Status >= 200 && resp.Status < 400:
		result.Success = true
		return result, nil

	case resp.Status == 403:
		// Token or session most likely invalid or expired.
		err := a.authError(
			fmt.Sprintf("submission forbidden: %s", preview(resp.Text())),
			resp.Status, nil)
		result.Error = err.Error()
		return result, err

	default:
		err := &adapter.Error{
			Kind:       adapter.KindVendor,
			Vendor:     VendorID,
			Message:    fmt.Sprintf("submission rejected: %s", preview(resp.Text())),
			StatusCode: resp.Status,
		}
		result.Error = err.Error()
		return result, err
	}
}

// sessionLost reports whether a page fetch signals a lost session:
// forbidden, or redirected (typically back to the login page).
func sessionLost(resp *transport.Response) bool {
	return resp.Status == 403 || resp.IsRedirect()
}

func preview(body string) string {
	if len(body) > responsePreviewLimit {
		return body[:responsePreviewLimit] + "..."
	}
	return body
}
