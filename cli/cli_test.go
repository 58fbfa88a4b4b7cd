package cli

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlynch25/ticketbox/applogger"
	"github.com/jlynch25/ticketbox/blockchain"
	"github.com/jlynch25/ticketbox/localcache"
	"github.com/jlynch25/ticketbox/verifier"
)

const ticketType = "0xdaed::ticket::Ticket"

type env struct {
	dir      string
	cfgPath  string
	cachedir string
}

func newEnv(t *testing.T) env {
	t.Helper()
	for _, key := range []string{"TICKETBOX_NETWORK", "TICKETBOX_CACHE_PATH", "TICKETBOX_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	e := env{
		dir:      dir,
		cfgPath:  filepath.Join(dir, "ticketbox.yaml"),
		cachedir: filepath.Join(dir, "db"),
	}
	cfg := fmt.Sprintf(`
network: devnet
cache:
  backend: badger
  path: %s
wallet:
  keystore: %s
log:
  level: debug
`, e.cachedir, filepath.Join(dir, "wallets.data"))
	require.NoError(t, os.WriteFile(e.cfgPath, []byte(cfg), 0o600))
	return e
}

func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", e.cfgPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func (e env) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// seed caches a lot and tickets for addr in the env's badger database.
func (e env) seed(t *testing.T, addr, lot string, tickets ...string) {
	t.Helper()
	store, err := localcache.OpenBadger(e.cachedir, applogger.Discard())
	require.NoError(t, err)
	defer store.Close()
	c := localcache.New(store, applogger.Discard())
	require.NoError(t, c.SetLotID(addr, lot))
	for _, id := range tickets {
		require.NoError(t, c.AppendTicketID(addr, id))
	}
}

func TestNetwork(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "network")
	require.NoError(t, err)
	assert.Contains(t, out, "* devnet")
	assert.Contains(t, out, "  mainnet")
	assert.Contains(t, out, "package=0xdaed73e0")
}

func TestUnknownNetworkRejected(t *testing.T) {
	e := newEnv(t)
	t.Setenv("TICKETBOX_NETWORK", "localnet")
	_, err := e.run(t, "network")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown network")
}

func TestWalletNewAndList(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "wallet", "new")
	require.NoError(t, err)
	address := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(address, "0x"))

	out, err = e.run(t, "wallet", "list")
	require.NoError(t, err)
	assert.Equal(t, address+"\n", out)

	// the single keystore wallet is the default account
	out, err = e.run(t, "cache", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "address: "+address)
}

func TestCacheShowWithoutAccount(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "cache", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keystore")
}

func TestCacheShowAndClear(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "0xa11ce", "0xbox", "0xt1", "0xt2")

	out, err := e.run(t, "cache", "show", "--address", "0xA11CE")
	require.NoError(t, err)
	assert.Contains(t, out, "address: 0xa11ce")
	assert.Contains(t, out, "lot:     0xbox")
	assert.Contains(t, out, "tickets: 2")
	assert.Contains(t, out, "  0xt2")

	out, err = e.run(t, "cache", "clear", "--address", "0xa11ce")
	require.NoError(t, err)
	assert.Contains(t, out, "cleared 0xa11ce")

	out, err = e.run(t, "cache", "show", "--address", "0xa11ce")
	require.NoError(t, err)
	assert.Contains(t, out, "lot:     -")
	assert.Contains(t, out, "tickets: 0")
}

const ticketObject = `{
  // captured from getObject
  "data": {
    "objectId": "0xt1",
    "version": "4",
    "content": {
      "dataType": "moveObject",
      "type": "` + ticketType + `",
      "fields": {"owner": "0xa11ce", "event_id": "9", "price": "25", "used": false,},
    },
  },
}`

func TestInspectTicket(t *testing.T) {
	e := newEnv(t)
	path := e.write(t, "ticket.jsonc", ticketObject)

	out, err := e.run(t, "inspect", "object", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ticket:     0xt1")
	assert.Contains(t, out, "event:      9")
	assert.Contains(t, out, "used:       unused")
}

func TestInspectLot(t *testing.T) {
	e := newEnv(t)
	path := e.write(t, "lot.json", `{"objectId": "0xbox", "content": {"dataType": "moveObject",
		"fields": {"eventId": 1, "total": "100", "sold": "101", "price": "10"}}}`)

	out, err := e.run(t, "inspect", "object", path, "--as", "lot")
	require.NoError(t, err)
	assert.Contains(t, out, "lot:        0xbox")
	assert.Contains(t, out, "sold:       101/100")
	assert.Contains(t, out, "warning:")
}

func TestInspectPackageFails(t *testing.T) {
	e := newEnv(t)
	path := e.write(t, "pkg.json", `{"data": {"objectId": "0x2", "content": {"dataType": "package"}}}`)

	_, err := e.run(t, "inspect", "object", path, "--as", "lot")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a readable lot")

	_, err = e.run(t, "inspect", "object", path, "--as", "box")
	require.Error(t, err)
}

func TestInspectTx(t *testing.T) {
	e := newEnv(t)
	path := e.write(t, "tx.json", `{
		"digest": "D1",
		"checkpoint": "77",
		"timestampMs": "1700000000000",
		"effects": {
			"status": {"status": "success"},
			"created": [{"owner": {"AddressOwner": "0x1"}, "reference": {"objectId": "0xnew"}}]
		}
	}`)

	out, err := e.run(t, "inspect", "tx", path)
	require.NoError(t, err)
	assert.Contains(t, out, "status:     success")
	assert.Contains(t, out, "checkpoint: 77")
	assert.Contains(t, out, "timestamp:  2023-11-14T22:13:20Z")
	assert.Contains(t, out, "ticket id:  0xnew (first created object)")
}

func TestVerifyFromCapture(t *testing.T) {
	e := newEnv(t)
	digest := blockchain.EncodeDigest(bytes.Repeat([]byte{1}, 32))
	e.write(t, digest+".json", `{
		"digest": "`+digest+`",
		"effects": {"status": {"status": "success"}, "created": []},
		"objectChanges": [{"type": "created", "objectType": "`+ticketType+`", "objectId": "0xt1"}]
	}`)
	e.write(t, "0xt1.jsonc", ticketObject)

	out, err := e.run(t, "verify", digest, "--capture", e.dir)
	require.NoError(t, err)
	assert.Contains(t, out, "ticket id:  0xt1\n")
	assert.Contains(t, out, "content:    available")
	assert.Contains(t, out, "owner:      0xa11ce")
}

func TestVerifyUnknownDigest(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "verify", "abc123", "--capture", e.dir)
	require.Error(t, err)
	assert.Equal(t, verifier.NotIndexedMessage, err.Error())
}

const lotObject = `{"data": {"objectId": "0xbox", "content": {"dataType": "moveObject",
	"type": "0xdaed::ticket::TicketBox",
	"fields": {"eventId": 9, "total": "100", "sold": "3", "price": "25"}}}}`

func TestCacheShowWithCapture(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "0xa11ce", "0xbox", "0xt1", "0xgone")
	e.write(t, "0xbox.json", lotObject)
	e.write(t, "0xt1.jsonc", ticketObject)

	out, err := e.run(t, "cache", "show", "--address", "0xa11ce", "--capture", e.dir)
	require.NoError(t, err)
	assert.Contains(t, out, "lot:     0xbox sold 3/100 price 25\n")
	assert.Contains(t, out, "tickets: 2\n")
	assert.Contains(t, out, "  0xt1 event 9 unused\n")
	assert.Contains(t, out, "  0xgone (not found)\n")
}

func TestCacheShowCaptureLotGone(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "0xa11ce", "0xbox")

	out, err := e.run(t, "cache", "show", "--address", "0xa11ce", "--capture", e.dir)
	require.NoError(t, err)
	assert.Contains(t, out, "lot:     0xbox (not found)")
	assert.Contains(t, out, "tickets: 0")
}

func TestCacheReconcile(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "0xa11ce", "0xbox", "0xt1", "0xgone")
	e.write(t, "0xbox.json", lotObject)
	e.write(t, "0xt1.jsonc", ticketObject)

	out, err := e.run(t, "cache", "reconcile", "--address", "0xa11ce", "--capture", e.dir)
	require.NoError(t, err)
	assert.Equal(t, "dropped ticket 0xgone\n", out)

	out, err = e.run(t, "cache", "show", "--address", "0xa11ce")
	require.NoError(t, err)
	assert.Contains(t, out, "lot:     0xbox")
	assert.Contains(t, out, "tickets: 1")
	assert.NotContains(t, out, "0xgone")

	out, err = e.run(t, "cache", "reconcile", "--address", "0xa11ce", "--capture", e.dir)
	require.NoError(t, err)
	assert.Equal(t, "nothing to drop for 0xa11ce\n", out)
}

func TestCacheReconcileNeedsCapture(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "cache", "reconcile", "--address", "0xa11ce")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capture")
}

func TestWalletSignAndVerify(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "wallet", "new")
	require.NoError(t, err)
	address := strings.TrimSpace(out)

	tx := base64.StdEncoding.EncodeToString([]byte("tx bytes"))
	out, err = e.run(t, "wallet", "sign", tx)
	require.NoError(t, err)
	sig := strings.TrimSpace(out)
	raw, err := base64.StdEncoding.DecodeString(sig)
	require.NoError(t, err)
	assert.Len(t, raw, 97)

	out, err = e.run(t, "wallet", "verify", tx, sig)
	require.NoError(t, err)
	assert.Equal(t, "valid, signed by "+address+"\n", out)

	other := base64.StdEncoding.EncodeToString([]byte("other bytes"))
	_, err = e.run(t, "wallet", "verify", other, sig)
	require.Error(t, err)

	_, err = e.run(t, "wallet", "sign", "not base64!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not base64")
}

func TestWalletSignUnknownAddress(t *testing.T) {
	e := newEnv(t)
	tx := base64.StdEncoding.EncodeToString([]byte("tx bytes"))
	_, err := e.run(t, "wallet", "sign", tx, "--address", "0xnope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
