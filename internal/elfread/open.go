package elfread

import "github.com/pkg/errors"

// Open maps the file at path read-only and parses it. The caller must Close the
// returned File.
func Open(path string) (*File, error) {
	data, release, err := mapFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s", path)
	}
	f, err := Parse(data)
	if err != nil {
		release()
		return nil, err
	}
	f.release = release
	return f, nil
}
