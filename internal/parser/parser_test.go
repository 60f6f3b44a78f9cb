package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/datagen/internal/models"
)

func TestParse_RoundTrip(t *testing.T) {
	want := &models.Document{
		Title:     "Quartalsbericht: Q3",
		Author:    models.DefaultAuthor,
		Created:   models.Date{Day: 26, Month: 1, Year: 1999},
		Reference: "Zz09aB7cD",
		Technique: models.TechniqueDigital,
		Digitized: models.DigitizedYear,
		Body:      "Erste Zeile.\n--------------------------\nNach dem Trenner.\n",
	}

	got, err := Parse(want.Render())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParse_EmptyBody(t *testing.T) {
	d := &models.Document{
		Title:     "Leer",
		Author:    models.DefaultAuthor,
		Created:   models.Date{Day: 1, Month: 1, Year: 2020},
		Reference: "AAAAAAAAA",
		Technique: models.TechniqueManual,
		Digitized: models.DigitizedYear,
	}
	got, err := Parse(d.Render())
	require.NoError(t, err)
	assert.Empty(t, got.Body)
	assert.Equal(t, models.TechniqueManual, got.Technique)
}

func TestParse_NoSeparator(t *testing.T) {
	_, err := Parse([]byte("Name: x\nAutor: y\n"))
	assert.ErrorIs(t, err, ErrNoSeparator)
}

func TestParse_WrongOrder(t *testing.T) {
	input := "Autor: Ayn Rand\n" +
		"Name: Report\n" +
		"Erstellungsdatum: 1.1.2020\n" +
		"Aktenzeichen: abcdefghi\n" +
		"Digitalisierungstechnik: digital\n" +
		"Digitalisierungsdatum: 2012\n" +
		models.Separator + "\n"
	_, err := Parse([]byte(input))
	assert.Error(t, err)
}

func TestParse_BadDate(t *testing.T) {
	input := "Name: Report\n" +
		"Autor: Ayn Rand\n" +
		"Erstellungsdatum: 2020-01-01\n" +
		"Aktenzeichen: abcdefghi\n" +
		"Digitalisierungstechnik: digital\n" +
		"Digitalisierungsdatum: 2012\n" +
		models.Separator + "\n"
	_, err := Parse([]byte(input))
	assert.ErrorContains(t, err, "malformed date")
}

func TestParse_UnknownTechnique(t *testing.T) {
	input := "Name: Report\n" +
		"Autor: Ayn Rand\n" +
		"Erstellungsdatum: 1.1.2020\n" +
		"Aktenzeichen: abcdefghi\n" +
		"Digitalisierungstechnik: analog\n" +
		"Digitalisierungsdatum: 2012\n" +
		models.Separator + "\n"
	_, err := Parse([]byte(input))
	assert.ErrorContains(t, err, "unknown technique")
}
