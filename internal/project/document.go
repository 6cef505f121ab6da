package project

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/rs/zerolog/log"

	"layout-studio/internal/doc"
	"layout-studio/internal/raster"
	"layout-studio/pkg/geometry"
)

// DocumentKey is the fixed store key the document persists under.
const DocumentKey = "document"

// SchemaVersion is the current stored-document schema. Version 1 carried a
// single style reference per layer; it upgrades transparently on load.
const SchemaVersion = 2

// DocumentFile is the serialized form of a document. Rasters and reference
// images are lossless PNG blobs in base64.
type DocumentFile struct {
	Version     int    `json:"version"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	NameCounter int    `json:"name_counter"`
	LensTag     string `json:"lens_tag,omitempty"`

	Layers          []LayerRecord      `json:"layers"`
	VanishingPoints []geometry.Point2D `json:"vanishing_points,omitempty"`

	GlobalRef *RefRecord `json:"global_ref,omitempty"`
	EditBase  *RefRecord `json:"edit_base,omitempty"`
}

// LayerRecord is the serialized form of one layer.
type LayerRecord struct {
	Name    string            `json:"name"`
	Visible bool              `json:"visible"`
	Opacity float64           `json:"opacity"`
	Blend   raster.BlendMode  `json:"blend"`
	Raster  string            `json:"raster"`
	Refs    []StyleRefRecord  `json:"refs,omitempty"`
	Anchors []doc.AnchorPoint `json:"anchors,omitempty"`

	// StyleRef is the legacy single-reference field from schema version 1.
	// Read on load for the upgrade path, never written.
	StyleRef *StyleRefRecord `json:"style_ref,omitempty"`
}

// StyleRefRecord is a serialized style reference with its optional mask.
type StyleRefRecord struct {
	Name  string `json:"name"`
	Image string `json:"image"`
	Mask  string `json:"mask,omitempty"`
}

// RefRecord is a serialized document-wide reference surface.
type RefRecord struct {
	Image   string  `json:"image"`
	Opacity float64 `json:"opacity"`
	Visible bool    `json:"visible"`
}

// Snapshot serializes the document into its stored form.
func Snapshot(d *doc.Document) (*DocumentFile, error) {
	f := &DocumentFile{
		Version:     SchemaVersion,
		Width:       d.Width(),
		Height:      d.Height(),
		NameCounter: d.NameCounter(),
		LensTag:     d.LensTag,
	}

	for _, l := range d.Layers() {
		blob, err := encodePNG(l.Buffer)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", l.Name, err)
		}
		rec := LayerRecord{
			Name:    l.Name,
			Visible: l.Visible,
			Opacity: l.Opacity,
			Blend:   l.Blend,
			Raster:  blob,
			Anchors: copyAnchors(l.Anchors),
		}
		for _, ref := range l.Refs {
			rr := StyleRefRecord{Name: ref.Name}
			if rr.Image, err = encodePNG(ref.Image); err != nil {
				return nil, fmt.Errorf("layer %q ref %q: %w", l.Name, ref.Name, err)
			}
			if ref.Mask != nil {
				if rr.Mask, err = encodePNG(ref.Mask); err != nil {
					return nil, fmt.Errorf("layer %q ref mask: %w", l.Name, err)
				}
			}
			rec.Refs = append(rec.Refs, rr)
		}
		f.Layers = append(f.Layers, rec)
	}

	for _, vp := range d.VanishingPoints() {
		f.VanishingPoints = append(f.VanishingPoints, vp.Pos)
	}

	var err error
	if f.GlobalRef, err = encodeRef(d.GlobalRef); err != nil {
		return nil, err
	}
	if f.EditBase, err = encodeRef(d.EditBase); err != nil {
		return nil, err
	}
	return f, nil
}

// Restore rebuilds a document from its stored form. Individual decode
// failures are logged and skipped so one corrupt blob cannot lose the rest
// of the document.
func Restore(f *DocumentFile) *doc.Document {
	if f.Version < SchemaVersion {
		upgrade(f)
	}

	var seeds []doc.LayerSeed
	for _, rec := range f.Layers {
		buf, err := decodePNG(rec.Raster)
		if err != nil {
			log.Warn().Err(err).Str("layer", rec.Name).Msg("restore: corrupt layer raster, starting blank")
			buf = nil
		}
		seed := doc.LayerSeed{
			Name:    rec.Name,
			Visible: rec.Visible,
			Opacity: rec.Opacity,
			Blend:   rec.Blend,
			Buffer:  buf,
			Anchors: anchorPtrs(rec.Anchors),
		}
		for _, rr := range rec.Refs {
			img, err := decodePNG(rr.Image)
			if err != nil {
				log.Warn().Err(err).Str("ref", rr.Name).Msg("restore: corrupt style reference, skipping")
				continue
			}
			ref := &doc.StyleRef{Name: rr.Name, Image: img}
			if rr.Mask != "" {
				if mask, err := decodePNG(rr.Mask); err == nil {
					ref.Mask = mask
				}
			}
			seed.Refs = append(seed.Refs, ref)
		}
		seeds = append(seeds, seed)
	}

	var vps []doc.VanishingPoint
	for _, pos := range f.VanishingPoints {
		vps = append(vps, doc.VanishingPoint{Pos: pos})
	}

	d := doc.Rebuild(f.Width, f.Height, seeds, vps, f.NameCounter, f.LensTag)
	d.GlobalRef = decodeRef(f.GlobalRef)
	d.EditBase = decodeRef(f.EditBase)
	return d
}

// upgrade migrates a stored document from an earlier schema in place.
func upgrade(f *DocumentFile) {
	for i := range f.Layers {
		if legacy := f.Layers[i].StyleRef; legacy != nil && len(f.Layers[i].Refs) == 0 {
			f.Layers[i].Refs = []StyleRefRecord{*legacy}
			f.Layers[i].StyleRef = nil
		}
	}
	f.Version = SchemaVersion
}

func encodeRef(ref doc.RefImage) (*RefRecord, error) {
	if ref.Image == nil {
		return nil, nil
	}
	blob, err := encodePNG(ref.Image)
	if err != nil {
		return nil, fmt.Errorf("reference image: %w", err)
	}
	return &RefRecord{Image: blob, Opacity: ref.Opacity, Visible: ref.Visible}, nil
}

func decodeRef(rec *RefRecord) doc.RefImage {
	if rec == nil {
		return doc.RefImage{}
	}
	img, err := decodePNG(rec.Image)
	if err != nil {
		log.Warn().Err(err).Msg("restore: corrupt reference image, dropping")
		return doc.RefImage{}
	}
	return doc.RefImage{Image: img, Opacity: rec.Opacity, Visible: rec.Visible}
}

func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func decodePNG(blob string) (*image.RGBA, error) {
	if blob == "" {
		return nil, fmt.Errorf("empty image blob")
	}
	data, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	return raster.ToRGBA(img), nil
}

func copyAnchors(anchors []*doc.AnchorPoint) []doc.AnchorPoint {
	out := make([]doc.AnchorPoint, 0, len(anchors))
	for _, a := range anchors {
		out = append(out, *a)
	}
	return out
}

func anchorPtrs(anchors []doc.AnchorPoint) []*doc.AnchorPoint {
	out := make([]*doc.AnchorPoint, 0, len(anchors))
	for i := range anchors {
		a := anchors[i]
		out = append(out, &a)
	}
	return out
}
