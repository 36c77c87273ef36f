package volume

// DirEntry is one row of a readdir listing (spec §4.9).
type DirEntry struct {
	Name  string
	Inode int
	Mode  uint32
}

// Readdir implements spec §4.9: it lists every allocated file directly
// under the volume root. There is no directory hierarchy to recurse into —
// mkdir/rmdir/opendir/releasedir are structural no-ops per §4.9/§9.
func (v *Volume) Readdir() ([]DirEntry, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	inodes, err := v.listAll()
	if err != nil {
		return nil, err
	}

	entries := make([]DirEntry, 0, len(inodes))
	for _, ino := range inodes {
		entries = append(entries, DirEntry{Name: ino.Name, Inode: ino.Index, Mode: ino.Mode})
	}
	return entries, nil
}
