package issuance

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	assetdom "tokenforge/internal/domain/asset"
	issdom "tokenforge/internal/domain/issuance"
)

func writeStaged(destPath string, payload []byte) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(destPath, payload, 0o644)
}

// ---- object store ----

type storedObject struct {
	Path string
	Size int64
	Body []byte
}

type fakeStore struct {
	mu      sync.Mutex
	objects []storedObject
	err     error
}

func (s *fakeStore) Put(_ context.Context, objectPath string, size int64, body io.Reader) (*assetdom.PublishedAsset, error) {
	if s.err != nil {
		return nil, s.err
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.objects = append(s.objects, storedObject{Path: objectPath, Size: size, Body: raw})
	s.mu.Unlock()
	return &assetdom.PublishedAsset{
		PublicURL:  "https://storage.example.com/bucket/" + objectPath,
		ObjectPath: objectPath,
		Size:       int64(len(raw)),
	}, nil
}

func (s *fakeStore) paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.objects))
	for _, o := range s.objects {
		out = append(out, o.Path)
	}
	return out
}

// ---- fetcher ----

// fakeFetcher writes payload to destPath, or fails with err.
type fakeFetcher struct {
	payload []byte
	err     error
	calls   int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string, destPath string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return writeStaged(destPath, f.payload)
}

// ---- secret decoder ----

type fakeSecrets struct {
	identity issdom.SigningIdentity
	err      error
}

func (s *fakeSecrets) Decode(string) (issdom.SigningIdentity, error) {
	if s.err != nil {
		return issdom.SigningIdentity{}, s.err
	}
	return s.identity, nil
}

// ---- minter ----

// fakeMinter records the order of on-chain calls and can fail any one of them.
type fakeMinter struct {
	calls []string

	createMintErr error
	holdingErr    error
	mintSupplyErr error
	metadataErr   error
	revokeErr     error

	// createMintConfirmErr は「送信済みだが confirm 待ちに失敗した」を再現:
	// アドレスと署名を返しつつエラーも返す。
	createMintConfirmErr error

	holdingCreated bool
	mintedAmount   uint64
	mintedDecimals uint8
	metadataURL    string
}

func (m *fakeMinter) CreateMint(_ context.Context, _ issdom.SigningIdentity, decimals uint8) (string, string, error) {
	m.calls = append(m.calls, "CreateMint")
	if m.createMintErr != nil {
		return "", "", m.createMintErr
	}
	m.mintedDecimals = decimals
	if m.createMintConfirmErr != nil {
		return "MintAddr1111", "sig-create", m.createMintConfirmErr
	}
	return "MintAddr1111", "sig-create", nil
}

func (m *fakeMinter) GetOrCreateHoldingAccount(_ context.Context, _ issdom.SigningIdentity, _ string) (string, bool, string, error) {
	m.calls = append(m.calls, "GetOrCreateHoldingAccount")
	if m.holdingErr != nil {
		return "", false, "", m.holdingErr
	}
	return "HoldingAddr1111", m.holdingCreated, "sig-ata", nil
}

func (m *fakeMinter) MintSupply(_ context.Context, _ issdom.SigningIdentity, _, _ string, amount uint64) (string, error) {
	m.calls = append(m.calls, "MintSupply")
	if m.mintSupplyErr != nil {
		return "", m.mintSupplyErr
	}
	m.mintedAmount = amount
	return "sig-mint", nil
}

func (m *fakeMinter) CreateMetadata(_ context.Context, _ issdom.SigningIdentity, _, _, _, metadataURL string) (string, string, error) {
	m.calls = append(m.calls, "CreateMetadata")
	if m.metadataErr != nil {
		return "", "", m.metadataErr
	}
	m.metadataURL = metadataURL
	return "MetaAddr1111", "sig-meta", nil
}

func (m *fakeMinter) RevokeMintAuthority(_ context.Context, _ issdom.SigningIdentity, _ string) (string, error) {
	m.calls = append(m.calls, "RevokeMintAuthority")
	if m.revokeErr != nil {
		return "", m.revokeErr
	}
	return "sig-revoke", nil
}

// ---- notifier ----

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) Notify(_ context.Context, _ string, message string) {
	n.mu.Lock()
	n.messages = append(n.messages, message)
	n.mu.Unlock()
}

func (n *fakeNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

// ---- ledger ----

type fakeLedger struct {
	steps      []issdom.Step
	completed  *issdom.MintResult
	failedStep issdom.Step
	failedMsg  string
}

func (l *fakeLedger) Create(context.Context, issdom.Record) error { return nil }

func (l *fakeLedger) UpdateStep(_ context.Context, _ string, step issdom.Step) error {
	l.steps = append(l.steps, step)
	return nil
}

func (l *fakeLedger) MarkComplete(_ context.Context, _ string, res issdom.MintResult) error {
	l.completed = &res
	return nil
}

func (l *fakeLedger) MarkFailed(_ context.Context, _ string, step issdom.Step, msg string) error {
	l.failedStep = step
	l.failedMsg = msg
	return nil
}

func (l *fakeLedger) GetByID(context.Context, string) (*issdom.Record, error) {
	return nil, issdom.ErrNotFound
}
