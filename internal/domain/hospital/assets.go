package hospital

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/beautypass/partner-api/internal/platform/blobstore"
)

// MaxInteriorImages caps the interior gallery, counting images already
// retained on the profile plus new uploads in the same request.
const MaxInteriorImages = 5

// ErrInteriorCapExceeded rejects an interior upload batch as a whole when it
// would push the gallery over the cap.
type ErrInteriorCapExceeded struct {
	Retained, Incoming int
}

func (e *ErrInteriorCapExceeded) Error() string {
	return fmt.Sprintf("interior images limited to %d: %d retained plus %d uploaded", MaxInteriorImages, e.Retained, e.Incoming)
}

// Upload is one incoming binary image.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AssetOps is the full set of image changes requested by one save.
type AssetOps struct {
	NewLogo            *Upload
	DeleteLogo         bool
	NewInteriors       []Upload
	DeleteInteriorURLs []string
}

// RejectedUpload records a per-file failure that did not abort the rest of
// the batch.
type RejectedUpload struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// AssetResult is what the profile upsert receives: the final logo URL (empty
// when none) and the final ordered interior list.
type AssetResult struct {
	LogoURL      string
	InteriorURLs []string
	Rejected     []RejectedUpload
}

// AssetManager applies image changes against the object store. Uploads and
// deletes are independent remote calls: a delete failure is logged and the
// save continues, leaking the object rather than blocking the partner.
type AssetManager struct {
	store  blobstore.Store
	logger zerolog.Logger
}

func NewAssetManager(store blobstore.Store, logger zerolog.Logger) *AssetManager {
	return &AssetManager{store: store, logger: logger}
}

// Apply works out the profile's final asset URLs. current may be nil for a
// first save. Individual oversized or failed uploads are collected into
// Rejected; only an interior cap violation fails the whole call.
func (m *AssetManager) Apply(ctx context.Context, accountID uuid.UUID, current *Profile, ops AssetOps) (*AssetResult, error) {
	res := &AssetResult{}

	var retained []string
	if current != nil {
		res.LogoURL = current.LogoURL
		retained = append(retained, current.InteriorImageURLs...)
	}

	// Deletions first so the cap counts only what the partner keeps.
	if ops.DeleteLogo && res.LogoURL != "" {
		m.deleteObject(ctx, res.LogoURL)
		res.LogoURL = ""
	}
	if len(ops.DeleteInteriorURLs) > 0 {
		drop := make(map[string]bool, len(ops.DeleteInteriorURLs))
		for _, u := range ops.DeleteInteriorURLs {
			drop[u] = true
		}
		kept := retained[:0]
		for _, u := range retained {
			if drop[u] {
				m.deleteObject(ctx, u)
				continue
			}
			kept = append(kept, u)
		}
		retained = kept
	}

	if len(retained)+len(ops.NewInteriors) > MaxInteriorImages {
		return nil, &ErrInteriorCapExceeded{Retained: len(retained), Incoming: len(ops.NewInteriors)}
	}

	if ops.NewLogo != nil {
		url, ok := m.upload(ctx, accountID, "logo", *ops.NewLogo, res)
		if ok {
			if res.LogoURL != "" {
				m.deleteObject(ctx, res.LogoURL)
			}
			res.LogoURL = url
		}
	}

	res.InteriorURLs = retained
	for _, up := range ops.NewInteriors {
		if url, ok := m.upload(ctx, accountID, "interior", up, res); ok {
			res.InteriorURLs = append(res.InteriorURLs, url)
		}
	}

	return res, nil
}

// upload stores one image, reporting failure per file so siblings in the
// same batch still go through.
func (m *AssetManager) upload(ctx context.Context, accountID uuid.UUID, kind string, up Upload, res *AssetResult) (string, bool) {
	if len(up.Data) > blobstore.MaxObjectSize {
		res.Rejected = append(res.Rejected, RejectedUpload{
			Filename: up.Filename,
			Reason:   fmt.Sprintf("file exceeds the %d MiB limit", blobstore.MaxObjectSize/(1024*1024)),
		})
		return "", false
	}

	key := objectKey(accountID, kind, up.Filename)
	url, err := m.store.Put(ctx, key, up.ContentType, up.Data)
	if err != nil {
		m.logger.Error().Err(err).Str("key", key).Msg("asset upload failed")
		res.Rejected = append(res.Rejected, RejectedUpload{Filename: up.Filename, Reason: "upload failed"})
		return "", false
	}
	return url, true
}

// deleteObject is best-effort: failures are logged, never propagated.
func (m *AssetManager) deleteObject(ctx context.Context, url string) {
	key, ok := m.store.KeyForURL(url)
	if !ok {
		m.logger.Warn().Str("url", url).Msg("asset url not owned by store, skipping delete")
		return
	}
	if err := m.store.Delete(ctx, key); err != nil {
		m.logger.Error().Err(err).Str("key", key).Msg("asset delete failed")
	}
}

// objectKey builds a random-suffixed key so re-uploads of the same filename
// never collide.
func objectKey(accountID uuid.UUID, kind, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("partners/%s/%s-%s%s", accountID, kind, uuid.New(), ext)
}
