package board

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/linesmerrill/school-board-api/api"
	"github.com/linesmerrill/school-board-api/databases"
	"github.com/linesmerrill/school-board-api/models"
)

// ErrMediaUnresolvable is returned for references minted by a backend this process does not have
var ErrMediaUnresolvable = errors.New("media reference cannot be resolved")

// UploadMedia stores data and returns the reference to keep in the board. The reference is
// only meaningful to ResolveMedia; it is not a URL.
func (s *Store) UploadMedia(ctx context.Context, data []byte, contentType, suggestedName string) (models.MediaRef, error) {
	if s.uploads == nil {
		return models.MediaRef{}, errors.Wrapf(databases.ErrUnavailable, "%s backend cannot store media", s.Kind())
	}
	tctx, cancel := api.WithQueryTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	ref, err := s.uploads.PutMedia(tctx, models.Media{
		Name:        suggestedName,
		ContentType: contentType,
		Data:        data,
		CreatedAt:   s.now().UTC(),
	})
	api.ObserveBackendCall("put_media", string(s.uploads.Kind()), start, err)
	if err != nil {
		return models.MediaRef{}, errors.Wrap(err, "upload media")
	}
	s.notifier.Notify(EventMediaUploaded, MediaUploadedPayload{
		Reference: ref.String(),
		Backend:   ref.Backend,
		URL:       s.uploads.MediaURL(ref.ID),
	})
	return ref, nil
}

// ResolveMedia turns a stored reference into a URL a display can render. Strings that are
// not references, such as plain URLs, are returned unchanged.
func (s *Store) ResolveMedia(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	parsed, ok := models.ParseMediaRef(ref)
	if !ok {
		return ref, nil
	}
	media, ok := s.registry[parsed.Backend]
	if !ok {
		return "", errors.Wrapf(ErrMediaUnresolvable, "no %s media store", parsed.Backend)
	}
	url := media.MediaURL(parsed.ID)
	if url == "" {
		return "", errors.Wrapf(ErrMediaUnresolvable, "malformed %s reference", parsed.Backend)
	}
	return url, nil
}

// OpenMedia fetches the asset behind a reference. Served paths ("/media/<name>") are
// accepted as well.
func (s *Store) OpenMedia(ctx context.Context, ref string) (models.Media, error) {
	parsed, ok := models.ParseMediaRef(ref)
	if !ok {
		if name := strings.TrimPrefix(ref, databases.MediaPath("")); name != ref {
			return s.MediaByName(ctx, name)
		}
		return models.Media{}, errors.Wrapf(ErrMediaUnresolvable, "%q is not a media reference", ref)
	}
	media, ok := s.registry[parsed.Backend]
	if !ok {
		return models.Media{}, errors.Wrapf(ErrMediaUnresolvable, "no %s media store", parsed.Backend)
	}
	return s.getMedia(ctx, media, parsed.ID)
}

// MediaByName fetches an asset served under /media/<name> by the active backend
func (s *Store) MediaByName(ctx context.Context, name string) (models.Media, error) {
	if s.local == nil {
		return models.Media{}, databases.ErrNotFound
	}
	return s.getMedia(ctx, s.local, name)
}

func (s *Store) getMedia(ctx context.Context, media databases.MediaStore, id string) (models.Media, error) {
	tctx, cancel := api.WithQueryTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	m, err := media.GetMedia(tctx, id)
	api.ObserveBackendCall("get_media", string(media.Kind()), start, err)
	return m, err
}
