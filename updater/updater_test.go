package updater

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/pbkdf2"

	"github.com/eiiot/amtraker-v3/converter"
	"github.com/eiiot/amtraker-v3/feed"
	"github.com/eiiot/amtraker-v3/refdata"
	"github.com/eiiot/amtraker-v3/store"
)

// encrypt wraps doc the way the upstream feed does, so the updater can be
// exercised end to end through real fetch-and-decrypt.
func encrypt(t *testing.T, doc string) []byte {
	t.Helper()

	chunk := func(plaintext []byte, password string) string {
		salt, _ := hex.DecodeString("9a3686ac")
		iv, _ := hex.DecodeString("c6eb2f7f5c4740c1a2f708fefd947d39")

		pad := aes.BlockSize - len(plaintext)%aes.BlockSize
		padded := append(append([]byte{}, plaintext...), bytes.Repeat([]byte{byte(pad)}, pad)...)

		key := pbkdf2.Key([]byte(password), salt, 1000, 16, sha1.New)
		block, err := aes.NewCipher(key)
		if err != nil {
			t.Fatal(err)
		}
		out := make([]byte, len(padded))
		cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
		return base64.StdEncoding.EncodeToString(out)
	}

	const contentKey = "0123456789abcdef0123456789abcdef"
	trailer := chunk([]byte(contentKey+"|0123456789abcdefg"), "69af143c-e8cf-47f8-bf09-fc1f61e5cc33")
	return []byte(chunk([]byte(doc), contentKey) + trailer)
}

const trainsDoc = `{"features":[{"properties":{
	"TrainNum":"123","RouteName":"Northeast Regional","EventCode":"NYP",
	"OrigCode":"NYP","DestCode":"WAS","Velocity":"0",
	"Station1":"{\"code\":\"NYP\",\"schdep\":\"7/15/2026 9:00:00 AM\",\"estdep\":\"7/15/2026 9:00:00 AM\"}",
	"Station2":"{\"code\":\"WAS\",\"scharr\":\"7/15/2026 12:30:00 PM\",\"estarr\":\"7/15/2026 12:30:00 PM\"}"
}}]}`

const stationsDoc = `{"StationsDataResponse":{"features":[
	{"properties":{"Code":"NYP","City":"New York"}},
	{"properties":{"Code":"WAS","City":"Washington"}}
]}}`

func newTestUpdater(t *testing.T, st *store.Store, trainsURL, stationsURL string) *Updater {
	t.Helper()
	ref, err := refdata.New()
	if err != nil {
		t.Fatal(err)
	}
	return New(st, feed.NewClient(5*time.Second), converter.New(ref), trainsURL, stationsURL)
}

func TestRefreshCommitsBothFeeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/trains" {
			_, _ = w.Write(encrypt(t, trainsDoc))
			return
		}
		_, _ = w.Write(encrypt(t, stationsDoc))
	}))
	defer srv.Close()

	st := store.New()
	u := newTestUpdater(t, st, srv.URL+"/trains", srv.URL+"/stations")

	if err := u.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	runs, ok := st.TrainsByNumber(123)
	if !ok || len(runs) != 1 {
		t.Fatalf("train 123 lookup = %v, %v", runs, ok)
	}
	if runs[0].TrainID != "123-15" {
		t.Errorf("TrainID = %q, want 123-15", runs[0].TrainID)
	}
	nyp, ok := st.Station("NYP")
	if !ok {
		t.Fatal("NYP missing after refresh")
	}
	if len(nyp.Trains) != 1 || nyp.Trains[0] != "123-15" {
		t.Errorf("NYP back-references = %v, want [123-15]", nyp.Trains)
	}
	if st.LastRefresh().IsZero() {
		t.Error("last refresh not recorded")
	}
}

func TestRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "upstream sad", http.StatusBadGateway)
			return
		}
		if r.URL.Path == "/trains" {
			_, _ = w.Write(encrypt(t, trainsDoc))
			return
		}
		_, _ = w.Write(encrypt(t, stationsDoc))
	}))
	defer srv.Close()

	st := store.New()
	u := newTestUpdater(t, st, srv.URL+"/trains", srv.URL+"/stations")

	if err := u.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	before := st.LastRefresh()

	fail.Store(true)
	if err := u.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}

	if _, ok := st.TrainsByNumber(123); !ok {
		t.Error("previous snapshot lost after failed refresh")
	}
	if !st.LastRefresh().Equal(before) {
		t.Error("failed refresh moved the last-refresh marker")
	}
}

func TestRefreshSingleFlight(t *testing.T) {
	release := make(chan struct{})
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		<-release
		http.Error(w, "done", http.StatusInternalServerError)
	}))
	defer srv.Close()

	st := store.New()
	u := newTestUpdater(t, st, srv.URL+"/trains", srv.URL+"/stations")

	firstDone := make(chan error, 1)
	go func() { firstDone <- u.Refresh(context.Background()) }()

	// Wait for the first refresh to be mid-fetch, then tick again.
	deadline := time.After(2 * time.Second)
	for requests.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("first refresh never reached the feeds")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if err := u.Refresh(context.Background()); err != nil {
		t.Errorf("overlapping tick returned %v, want nil skip", err)
	}

	close(release)
	if err := <-firstDone; err == nil {
		t.Error("expected first refresh to fail on HTTP 500")
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("feeds were fetched %d times, want 2", got)
	}
}
