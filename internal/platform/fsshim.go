package platform

// FS adapts the package-level FileMtime/FindBinariesUnder functions
// into validate.MtimeFS's method-set shape, the same way Trampolines
// adapts the invoke functions into dispatch.Invoker.
type FS struct{}

func (FS) FileMtime(path string) (int64, error)          { return FileMtime(path) }
func (FS) FindBinariesUnder(dir string) ([]string, error) { return FindBinariesUnder(dir) }
