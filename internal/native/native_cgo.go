//go:build cgo && galnative

package native

/*
#cgo LDFLAGS: -lne2001 -ltsky -lsla -lgfortran
float dm_(float *dist, float *l, float *b, int *ndir, float *dmpd);
float psr_tsky_(float *l, float *b, float *freq);
void galtfeq_(float *l, float *b, float *ra, float *dec, int *dir);
*/
import "C"

const available = true

func dm(dist, l, b float32, mode int32) (float32, error) {
	cDist, cL, cB := C.float(dist), C.float(l), C.float(b)
	cMode := C.int(mode)
	cOut := C.float(0)
	return float32(C.dm_(&cDist, &cL, &cB, &cMode, &cOut)), nil
}

func tsky(l, b, freq float32) (float32, error) {
	cL, cB, cFreq := C.float(l), C.float(b), C.float(freq)
	return float32(C.psr_tsky_(&cL, &cB, &cFreq)), nil
}

func galtfeq(l, b, ra, dec float32, dir int32) (float32, float32, float32, float32, error) {
	cL, cB, cRA, cDec := C.float(l), C.float(b), C.float(ra), C.float(dec)
	cDir := C.int(dir)
	C.galtfeq_(&cL, &cB, &cRA, &cDec, &cDir)
	return float32(cL), float32(cB), float32(cRA), float32(cDec), nil
}
