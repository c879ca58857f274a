package export

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// faces holds one face per text role on the sheet.
type faces struct {
	title    font.Face
	header   font.Face
	lane     font.Face
	label    font.Face
	block    font.Face
	duration font.Face
}

var faceSizes = struct {
	title, header, lane, label, block, duration float64
}{56, 32, 40, 32, 36, 28}

// basicFaces uses the built-in bitmap face for every role. It has no
// Japanese glyphs, so deployments should configure a font file.
func basicFaces() faces {
	f := basicfont.Face7x13
	return faces{title: f, header: f, lane: f, label: f, block: f, duration: f}
}

// loadFaces parses a TrueType/OpenType font or the first font of a
// collection and builds the faces from it.
func loadFaces(path string) (faces, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return faces{}, fmt.Errorf("reading font %s: %w", path, err)
	}

	f, err := opentype.Parse(data)
	if err != nil {
		coll, collErr := opentype.ParseCollection(data)
		if collErr != nil {
			return faces{}, fmt.Errorf("parsing font %s: %w", path, err)
		}
		if f, err = coll.Font(0); err != nil {
			return faces{}, fmt.Errorf("reading font %s from collection: %w", path, err)
		}
	}

	face := func(size float64) (font.Face, error) {
		return opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	}

	var out faces
	for _, role := range []struct {
		dst  *font.Face
		size float64
	}{
		{&out.title, faceSizes.title},
		{&out.header, faceSizes.header},
		{&out.lane, faceSizes.lane},
		{&out.label, faceSizes.label},
		{&out.block, faceSizes.block},
		{&out.duration, faceSizes.duration},
	} {
		if *role.dst, err = face(role.size); err != nil {
			return faces{}, fmt.Errorf("creating %gpt face: %w", role.size, err)
		}
	}
	return out, nil
}
