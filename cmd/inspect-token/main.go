// Command inspect-token prints the claims of the stored session token, or of
// a token given with -token.
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nasti/booking-client/config"
	"github.com/nasti/booking-client/internal/session"
	"github.com/nasti/booking-client/internal/storage"
)

func main() {
	var token string
	flag.StringVar(&token, "token", "", "token to inspect instead of the stored one")
	flag.Parse()

	if token == "" {
		var err error
		token, err = loadStoredToken()
		if err != nil {
			fmt.Printf("Failed to load token: %v\n", err)
			os.Exit(1)
		}
		if token == "" {
			fmt.Println("No token stored. Run booking-client login first.")
			return
		}
	}

	fmt.Printf("Token: %s...\n\n", token[:min(50, len(token))])
	printPayload(token)

	claims, err := session.DecodeClaims(token)
	if err != nil {
		fmt.Printf("\nNot a usable session: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	if claims.ExpiresAt == 0 {
		fmt.Println("Expires: never set, treated as expired")
	} else {
		state := "valid"
		if claims.Expired(time.Now()) {
			state = "expired"
		}
		fmt.Printf("Expires: %s (%s)\n", claims.Expiry().Local().Format(time.RFC1123), state)
	}
	if claims.HasSubject {
		fmt.Printf("User id: %d\n", claims.Subject)
	} else {
		fmt.Println("User id: none")
	}
}

func loadStoredToken() (string, error) {
	config.LoadEnvFile()
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	if cfg.Store != config.StoreSQLite {
		return "", fmt.Errorf("only the sqlite store can be inspected, configured store is %q", cfg.Store)
	}

	var key []byte
	if cfg.TokenKey != "" {
		if key, err = storage.DeriveKey(cfg.TokenKey); err != nil {
			return "", err
		}
	}
	store, err := storage.NewSQLiteStore(cfg.DBPath, key)
	if err != nil {
		return "", err
	}
	defer store.Close()

	token, _, err := session.New(store.Prefs(storage.SessionNamespace)).Token()
	return token, err
}

// printPayload shows the raw payload segment, pretty-printed when it is JSON.
func printPayload(token string) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		fmt.Println("Invalid JWT format")
		return
	}

	payload := strings.TrimRight(parts[1], "=")
	decoded, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			fmt.Printf("Failed to decode: %v\n", err)
			return
		}
	}

	var prettyJSON bytes.Buffer
	if json.Indent(&prettyJSON, decoded, "", "  ") == nil {
		fmt.Println(prettyJSON.String())
	} else {
		fmt.Println(string(decoded))
	}
}
