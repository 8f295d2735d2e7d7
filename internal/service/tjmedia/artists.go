package tjmedia

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kapu/tj-jpop-chart-go/internal/util"
)

// ArtistDirectory maps Japanese artist names to the Korean names readers know.
type ArtistDirectory struct {
	aliases map[string]string
}

func NewArtistDirectory(aliases map[string]string) *ArtistDirectory {
	if aliases == nil {
		aliases = map[string]string{}
	}
	return &ArtistDirectory{aliases: aliases}
}

// LoadArtistDirectory reads a ja<TAB>ko alias file. A missing file yields an
// empty directory.
func LoadArtistDirectory(path string) (*ArtistDirectory, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return NewArtistDirectory(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open artist aliases: %w", err)
	}
	defer f.Close()

	aliases, err := parseAliases(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read artist aliases %s: %w", path, err)
	}
	return NewArtistDirectory(aliases), nil
}

func parseAliases(r io.Reader) (map[string]string, error) {
	aliases := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ja, ko, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		aliases[strings.TrimSpace(ja)] = strings.TrimSpace(ko)
	}
	return aliases, scanner.Err()
}

func (d *ArtistDirectory) Len() int {
	return len(d.aliases)
}

// ResolveArtist returns the Korean artist name, or nil when none can be
// derived without a translator.
func (d *ArtistDirectory) ResolveArtist(artistJa string) *string {
	artistJa = strings.TrimSpace(artistJa)
	if artistJa == "" {
		return nil
	}
	if ko, ok := d.aliases[artistJa]; ok && ko != "" {
		return &ko
	}

	// "아이묭(あいみょん)" style names carry the Korean form up front
	if prefix, _, found := strings.Cut(artistJa, "("); found {
		prefix = strings.TrimSpace(prefix)
		if util.ContainsHangul(prefix) {
			return &prefix
		}
	}

	if util.IsLatinOrDigit(artistJa) {
		return &artistJa
	}
	return nil
}
