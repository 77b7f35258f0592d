package deepsort

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadLabels reads the labels used to train the Model from the given text file.
// It should contain one label per line.
func LoadLabels(file string) ([]string, error) {

	// open the file
	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	// create a scanner to read the file.
	scanner := bufio.NewScanner(f)

	var labels []string

	// read and trim each line
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		labels = append(labels, line)
	}

	// check for errors during scanning
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return labels, nil
}

// Translations maps lower case class labels to a display name
type Translations map[string]string

// LoadTranslations reads label translations from the given text file, one
// "label=translation" pair per line.  Blank lines and lines starting with #
// are skipped
func LoadTranslations(file string) (Translations, error) {

	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	scanner := bufio.NewScanner(f)
	tr := make(Translations)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		label, name, ok := strings.Cut(line, "=")

		if !ok {
			return nil, fmt.Errorf("invalid translation on line %d: %q", lineNo, line)
		}

		tr[strings.ToLower(strings.TrimSpace(label))] = strings.TrimSpace(name)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return tr, nil
}

// Translate returns the display name of label, or label itself when no
// translation exists
func (t Translations) Translate(label string) string {

	if name, ok := t[strings.ToLower(label)]; ok && name != "" {
		return name
	}

	return label
}

// Apply returns a copy of labels with each entry translated
func (t Translations) Apply(labels []string) []string {

	out := make([]string, len(labels))

	for i, l := range labels {
		out[i] = t.Translate(l)
	}

	return out
}
