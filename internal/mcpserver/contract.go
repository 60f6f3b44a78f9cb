package mcpserver

// HeaderFormat describes the on-disk layout of a generated archive document.
const HeaderFormat = `# datagen document format

Archive layout: <root>/<year>/<department>/<title lowercased>.txt

Every document starts with a fixed metadata header, one field per line,
always in this order:

` + "```" + `text
Name: <template title>
Autor: Ayn Rand
Erstellungsdatum: <day 1-26>.<month 1-12>.<year of the enclosing directory>
Aktenzeichen: <9 random alphanumeric characters, not unique>
Digitalisierungstechnik: manuell | digital
Digitalisierungsdatum: 2012
--------------------------
` + "```" + `

The template body follows the 26-dash separator verbatim.

## Notes

- "manuell" is drawn for roughly 40% of documents.
- A leaf directory holds 1 to 8 documents; templates are drawn with
  replacement, so a repeated title replaces the earlier file.
- Dates are not normalised: 26.2.2020 is a valid creation date.
`
