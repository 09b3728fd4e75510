// gen_keys writes keystore files for local legacy wallets and prints the
// matching legacy.keystore section of the migrator config.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"gopkg.in/yaml.v3"

	"github.com/galxe/wallet-migrator/pkg/config"
)

func main() {
	keysDir := flag.String("dir", "keys", "directory for the keystore files")
	password := flag.String("password", "testpassword", "password for every generated keystore")
	identities := flag.String("identities", "alice@example.com,bob@example.com", "comma separated user identities")
	flag.Parse()

	if err := os.MkdirAll(*keysDir, 0755); err != nil {
		panic(err)
	}

	accounts := make(map[string]config.KeystoreAccount)
	for _, identity := range strings.Split(*identities, ",") {
		identity = strings.TrimSpace(identity)
		if identity == "" {
			continue
		}

		privateKey, err := crypto.GenerateKey()
		if err != nil {
			panic(err)
		}

		// a fresh directory per key so the UTC-- file is unambiguous
		tmpDir, err := os.MkdirTemp(*keysDir, "tmp-")
		if err != nil {
			panic(err)
		}
		ks := keystore.NewKeyStore(tmpDir, keystore.LightScryptN, keystore.LightScryptP)
		account, err := ks.ImportECDSA(privateKey, *password)
		if err != nil {
			panic(err)
		}

		name := strings.NewReplacer("@", "_at_", "/", "_").Replace(identity)
		path := filepath.Join(*keysDir, name+".key.json")
		if err := os.Rename(account.URL.Path, path); err != nil {
			panic(err)
		}
		if err := os.RemoveAll(tmpDir); err != nil {
			panic(err)
		}

		accounts[identity] = config.KeystoreAccount{Path: path, Password: "${KEYSTORE_PASSWORD}"}
		fmt.Fprintf(os.Stderr, "%s: %s\n", identity, account.Address.Hex())
	}

	out, err := yaml.Marshal(map[string]any{
		"legacy": map[string]any{
			"provider": config.ProviderKeystore,
			"keystore": config.KeystoreConfig{Accounts: accounts},
		},
	})
	if err != nil {
		panic(err)
	}
	fmt.Print(string(out))
}
