package badskip

//metaffi:bogus
func Exported() {}
