package model

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mechiko/pdfimg/log"
	"github.com/pkg/errors"
)

// xrefEntry locates one indirect object: either a byte offset into the
// file (classic xref table) or a (streamObjNr, index) pair inside a
// compressed object stream.
type xrefEntry struct {
	offset        int64
	free          bool
	compressed    bool
	inStream      int
	indexInStream int
}

// Document is an opened PDF file: its raw bytes, cross-reference table and
// trailer. It supports classic xref tables and, best-effort, cross-
// reference streams; it does not merge incremental updates beyond
// following /Prev once per section, and it never decrypts.
type Document struct {
	data    []byte
	xref    map[int]xrefEntry
	trailer Dict
	cache   map[int]Object
}

// Open reads a PDF file from path.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return OpenReader(f)
}

// OpenReader reads a PDF from r, buffering it fully in memory. PDFs are
// random-access by nature (xref offsets point backwards and forwards
// through the file) so there is no streaming alternative.
func OpenReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	d := &Document{
		data:  data,
		xref:  map[int]xrefEntry{},
		cache: map[int]Object{},
	}

	offset, err := d.lastXRefOffset()
	if err != nil {
		return nil, err
	}

	seen := map[int64]bool{}
	for offset >= 0 && !seen[offset] {
		seen[offset] = true
		prev, err := d.readXRefSectionAt(offset)
		if err != nil {
			return nil, err
		}
		if prev == nil {
			break
		}
		offset = *prev
	}

	if d.trailer == nil {
		return nil, errors.New("model: no trailer found")
	}
	return d, nil
}

// lastXRefOffset finds the byte offset named by the final `startxref`
// keyword in the file.
func (d *Document) lastXRefOffset() (int64, error) {
	tail := d.data
	if len(tail) > 2048 {
		tail = tail[len(tail)-2048:]
	}
	idx := bytes.LastIndex(tail, []byte("startxref"))
	if idx < 0 {
		return 0, errors.New("model: startxref keyword not found")
	}
	s := bufio.NewScanner(bytes.NewReader(tail[idx+len("startxref"):]))
	s.Split(bufio.ScanWords)
	if !s.Scan() {
		return 0, errors.New("model: startxref has no offset")
	}
	off, err := strconv.ParseInt(strings.TrimSpace(s.Text()), 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "model: corrupt startxref offset")
	}
	return off, nil
}

// readXRefSectionAt parses one xref section (classic table + trailer, or
// a cross-reference stream) at offset, merging newly-discovered entries
// into d.xref without overwriting ones already seen from a more recent
// section, and returns the /Prev offset for the next section, if any.
func (d *Document) readXRefSectionAt(offset int64) (*int64, error) {
	if offset < 0 || int(offset) >= len(d.data) {
		return nil, errors.Errorf("model: xref offset %d out of range", offset)
	}
	p := newParser(string(d.data[offset:]))
	p.skipWhitespace()

	if strings.HasPrefix(p.rest(), "xref") {
		return d.readClassicXRefSection(p)
	}
	return d.readXRefStreamSection(offset)
}

func (d *Document) readClassicXRefSection(p *parser) (*int64, error) {
	p.pos += len("xref")

	for {
		p.skipWhitespace()
		if strings.HasPrefix(p.rest(), "trailer") {
			p.pos += len("trailer")
			break
		}
		tok1 := p.peekToken()
		start, err := strconv.Atoi(tok1)
		if err != nil {
			return nil, errors.Wrap(err, "model: corrupt xref subsection header")
		}
		p.pos += len(tok1)
		p.skipWhitespace()
		tok2 := p.peekToken()
		count, err := strconv.Atoi(tok2)
		if err != nil {
			return nil, errors.Wrap(err, "model: corrupt xref subsection count")
		}
		p.pos += len(tok2)

		for i := 0; i < count; i++ {
			p.skipWhitespace()
			line := p.rest()
			if len(line) < 18 {
				return nil, errors.New("model: truncated xref entry")
			}
			entryLine := line[:18]
			p.pos += 20 // each entry is exactly 20 bytes per the classic format
			off, err := strconv.ParseInt(strings.TrimSpace(entryLine[0:10]), 10, 64)
			if err != nil {
				return nil, errors.Wrap(err, "model: corrupt xref entry offset")
			}
			free := entryLine[17] == 'f'
			objNr := start + i
			if _, exists := d.xref[objNr]; !exists {
				d.xref[objNr] = xrefEntry{offset: off, free: free}
			}
		}
	}

	p.skipWhitespace()
	trailerObj, err := p.ParseObject()
	if err != nil {
		return nil, errors.Wrap(err, "model: corrupt trailer dictionary")
	}
	trailerDict, ok := trailerObj.(Dict)
	if !ok {
		return nil, errors.New("model: trailer is not a dictionary")
	}
	if d.trailer == nil {
		d.trailer = trailerDict
	}

	if xrs := trailerDict.IntEntry("XRefStm"); xrs != nil {
		if _, err := d.readXRefStreamSection(int64(*xrs)); err != nil {
			log.Info.Printf("model: hybrid-reference XRefStm at %d failed: %v\n", *xrs, err)
		}
	}

	if prev := trailerDict.IntEntry("Prev"); prev != nil {
		off := int64(*prev)
		return &off, nil
	}
	return nil, nil
}

// readXRefStreamSection parses a cross-reference stream object at offset.
// Support is best-effort: only the common {1,2,1}-ish W layouts actually
// seen in the wild are handled via variable-width big-endian fields.
func (d *Document) readXRefStreamSection(offset int64) (*int64, error) {
	objNr, _, dict, raw, err := d.readIndirectObjectAt(offset)
	if err != nil {
		return nil, errors.Wrap(err, "model: reading xref stream")
	}
	_ = objNr

	sd := &StreamDict{Dict: dict, Raw: raw, FilterPipeline: BuildFilterPipeline(dict)}
	if err := sd.Decode(); err != nil {
		return nil, errors.Wrap(err, "model: decoding xref stream")
	}

	wArr := dict.ArrayEntry("W")
	if len(wArr) != 3 {
		return nil, errors.New("model: xref stream missing /W")
	}
	w := wArr.Floats()
	w0, w1, w2 := int(w[0]), int(w[1]), int(w[2])
	entryLen := w0 + w1 + w2

	var index []int
	if idxArr := dict.ArrayEntry("Index"); idxArr != nil {
		for _, f := range idxArr.Floats() {
			index = append(index, int(f))
		}
	} else {
		size := dict.IntEntry("Size")
		if size == nil {
			return nil, errors.New("model: xref stream missing /Size and /Index")
		}
		index = []int{0, *size}
	}

	content := sd.Content
	pos := 0
	for i := 0; i+1 < len(index); i += 2 {
		start, count := index[i], index[i+1]
		for j := 0; j < count; j++ {
			if pos+entryLen > len(content) {
				return nil, errors.New("model: xref stream truncated")
			}
			entry := content[pos : pos+entryLen]
			pos += entryLen
			objNr := start + j

			typ := 1
			if w0 > 0 {
				typ = int(beUint(entry[:w0]))
			}
			f2 := beUint(entry[w0 : w0+w1])
			f3 := beUint(entry[w0+w1 : w0+w1+w2])

			if _, exists := d.xref[objNr]; exists {
				continue
			}
			switch typ {
			case 0:
				d.xref[objNr] = xrefEntry{free: true}
			case 1:
				d.xref[objNr] = xrefEntry{offset: int64(f2)}
			case 2:
				d.xref[objNr] = xrefEntry{compressed: true, inStream: int(f2), indexInStream: int(f3)}
			}
		}
	}

	if d.trailer == nil {
		d.trailer = dict
	}

	if prev := dict.IntEntry("Prev"); prev != nil {
		off := int64(*prev)
		return &off, nil
	}
	return nil, nil
}

func beUint(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

// readIndirectObjectAt parses "objNr genNr obj ... endobj" starting at
// offset, returning the object number, generation, dictionary (if the
// object is a dict or stream) and, for a stream, the raw (encoded) bytes.
func (d *Document) readIndirectObjectAt(offset int64) (objNr, genNr int, dict Dict, raw []byte, err error) {
	if offset < 0 || int(offset) >= len(d.data) {
		return 0, 0, nil, nil, errors.Errorf("model: object offset %d out of range", offset)
	}
	p := newParser(string(d.data[offset:]))
	p.skipWhitespace()

	objTok := p.peekToken()
	objNr, err = strconv.Atoi(objTok)
	if err != nil {
		return 0, 0, nil, nil, errors.Wrap(err, "model: corrupt object number")
	}
	p.pos += len(objTok)
	p.skipWhitespace()

	genTok := p.peekToken()
	genNr, err = strconv.Atoi(genTok)
	if err != nil {
		return 0, 0, nil, nil, errors.Wrap(err, "model: corrupt generation number")
	}
	p.pos += len(genTok)
	p.skipWhitespace()

	if !strings.HasPrefix(p.rest(), "obj") {
		return 0, 0, nil, nil, errors.New("model: expected 'obj' keyword")
	}
	p.pos += len("obj")

	obj, err := p.ParseObject()
	if err != nil {
		return 0, 0, nil, nil, err
	}
	d2, _ := obj.(Dict)

	p.skipWhitespace()
	if strings.HasPrefix(p.rest(), "stream") {
		p.pos += len("stream")
		// Per 7.3.8.1: a single EOL (CRLF or LF alone, never CR alone)
		// follows the stream keyword before the data begins.
		if p.pos < len(p.buf) && p.buf[p.pos] == '\r' {
			p.pos++
		}
		if p.pos < len(p.buf) && p.buf[p.pos] == '\n' {
			p.pos++
		}
		start := offset + int64(p.pos)

		length := 0
		if lp := d2.IntEntry("Length"); lp != nil {
			length = *lp
		} else if ref, ok := d2["Length"].(IndirectRef); ok {
			// Indirect /Length: resolved via a second pass once the full
			// xref table is available, here approximated by scanning
			// forward for "endstream".
			_ = ref
			length = d.scanForEndstream(int(start))
		} else {
			length = d.scanForEndstream(int(start))
		}

		end := int(start) + length
		if end > len(d.data) {
			end = len(d.data)
		}
		raw = d.data[start:end]
		return objNr, genNr, d2, raw, nil
	}

	return objNr, genNr, d2, nil, nil
}

func (d *Document) scanForEndstream(from int) int {
	idx := bytes.Index(d.data[from:], []byte("endstream"))
	if idx < 0 {
		return len(d.data) - from
	}
	// Trim the EOL pdfcpu and most writers insert immediately before the
	// endstream keyword; it is not part of the stream's data.
	end := idx
	for end > 0 && (d.data[from+end-1] == '\n' || d.data[from+end-1] == '\r') {
		end--
	}
	return end
}

// Resolve dereferences o if it is an IndirectRef, returning the pointed-to
// object; any other Object is returned unchanged.
func (d *Document) Resolve(o Object) (Object, error) {
	ref, ok := o.(IndirectRef)
	if !ok {
		return o, nil
	}
	return d.object(ref.ObjectNumber)
}

// ResolveDict resolves o and type-asserts it to Dict (also accepting a
// StreamDict's embedded Dict).
func (d *Document) ResolveDict(o Object) (Dict, error) {
	r, err := d.Resolve(o)
	if err != nil {
		return nil, err
	}
	switch v := r.(type) {
	case Dict:
		return v, nil
	case *StreamDict:
		return v.Dict, nil
	default:
		return nil, errors.Errorf("model: expected dictionary, got %T", r)
	}
}

func (d *Document) object(objNr int) (Object, error) {
	if o, ok := d.cache[objNr]; ok {
		return o, nil
	}
	entry, ok := d.xref[objNr]
	if !ok || entry.free {
		return Null{}, nil
	}

	if entry.compressed {
		obj, err := d.objectFromObjectStream(entry.inStream, entry.indexInStream)
		if err != nil {
			return nil, err
		}
		d.cache[objNr] = obj
		return obj, nil
	}

	_, _, dict, raw, err := d.readIndirectObjectAt(entry.offset)
	if err != nil {
		return nil, err
	}
	var result Object
	if raw != nil {
		sd := &StreamDict{Dict: dict}
		sd.Raw = raw
		sd.FilterPipeline = BuildFilterPipeline(dict)
		result = sd
	} else if dict != nil {
		result = dict
	} else {
		result = Null{}
	}
	d.cache[objNr] = result
	return result, nil
}

func (d *Document) objectFromObjectStream(streamObjNr, index int) (Object, error) {
	container, err := d.object(streamObjNr)
	if err != nil {
		return nil, err
	}
	sd, ok := container.(*StreamDict)
	if !ok {
		return nil, errors.Errorf("model: object stream %d is not a stream", streamObjNr)
	}
	if sd.Content == nil {
		if err := sd.Decode(); err != nil {
			return nil, err
		}
	}

	n := sd.IntEntry("N")
	first := sd.IntEntry("First")
	if n == nil || first == nil {
		return nil, errors.New("model: object stream missing /N or /First")
	}

	head := newParser(string(sd.Content))
	offsets := make([]int, *n)
	for i := 0; i < *n; i++ {
		head.skipWhitespace()
		head.peekToken() // object number, unused: compressed objects are addressed by index here
		numTok := head.peekToken()
		head.pos += len(numTok)
		head.skipWhitespace()
		offTok := head.peekToken()
		off, err := strconv.Atoi(offTok)
		if err != nil {
			return nil, errors.Wrap(err, "model: corrupt object stream header")
		}
		head.pos += len(offTok)
		offsets[i] = off
	}
	if index >= len(offsets) {
		return nil, errors.Errorf("model: object stream index %d out of range", index)
	}

	body := newParser(string(sd.Content[*first+offsets[index]:]))
	return body.ParseObject()
}

// Trailer returns the merged trailer dictionary.
func (d *Document) Trailer() Dict { return d.trailer }

// Root returns the document catalog (/Root).
func (d *Document) Root() (Dict, error) {
	rootRef, ok := d.trailer.Find("Root")
	if !ok {
		return nil, errors.New("model: trailer has no /Root")
	}
	return d.ResolveDict(rootRef)
}
