// Package config reads and writes the Google Analytics OAuth config file.
//
// The config file is a JSON document with two recognized sections:
//
//	{
//	  "googleOAuthCredentials": {"clientId": "...", "clientSecret": "..."},
//	  "googleAnalyticsTokens": {"accessToken": "...", "refreshToken": "...", "expiresAt": 1736000000}
//	}
//
// Only accessToken and expiresAt are ever rewritten (after a token refresh);
// all other content of the document is preserved. Writes are atomic via a
// temp-file-and-rename so concurrent readers never observe a torn document.
package config
