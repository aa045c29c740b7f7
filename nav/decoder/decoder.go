// The decoder package decodes the GPS L1 C/A navigation message of one
// satellite.
//
//	d := decoder.New(prn, satellite.Table{}, logger)
//
// creates a decoder for the satellite.  Each call of
//
//	subframeID, err := d.Decode(raw)
//
// takes a 40-byte subframe (ten 32-bit little-endian words, each with
// thirty data bits), decodes it and merges the result into the state held
// by the decoder.  The ephemeris is assembled from subframes 1, 2 and 3,
// the almanacs from subframes 4 and 5, and the ionospheric and UTC models
// from subframe 4 page 18.
//
// When a record is complete it can be taken using Ephemeris, Almanac, Iono
// or UTCModel.  Each of those clears the record's ready flag, so a record
// is delivered once.  Calling it again returns a copy with Valid false
// until another subframe completes the record again.
//
// A decoder is not safe for concurrent use.  Use one decoder per satellite
// and feed it from one goroutine.  Decoders for different satellites share
// nothing and can run in parallel.
package decoder

import (
	"log/slog"

	"github.com/goblimey/go-gpsnav/nav/almanac"
	"github.com/goblimey/go-gpsnav/nav/almanacpage"
	"github.com/goblimey/go-gpsnav/nav/ephemeris"
	"github.com/goblimey/go-gpsnav/nav/frame"
	"github.com/goblimey/go-gpsnav/nav/header"
	"github.com/goblimey/go-gpsnav/nav/iono"
	"github.com/goblimey/go-gpsnav/nav/satellite"
	"github.com/goblimey/go-gpsnav/nav/subframe1"
	"github.com/goblimey/go-gpsnav/nav/subframe2"
	"github.com/goblimey/go-gpsnav/nav/subframe3"
	"github.com/goblimey/go-gpsnav/nav/subframe4"
	"github.com/goblimey/go-gpsnav/nav/subframe5"
	"github.com/goblimey/go-gpsnav/nav/utcmodel"
	"github.com/goblimey/go-gpsnav/nav/utils"
)

// Decoder holds the navigation message state of one satellite.
type Decoder struct {
	// prn is the satellite being decoded.
	prn int

	// block is the satellite's block, from the metadata lookup.
	block string

	logger *slog.Logger

	// logLevel controls the String output of the decoded messages.
	logLevel slog.Level

	// checkParity is true if Decode checks the parity of each word.
	checkParity bool

	// towBySubframe holds the time of week of the most recent subframe of
	// each type, indexed by subframe ID - 1.
	towBySubframe [5]float64

	// tow is the time of week of the most recent subframe, previousTOW
	// the one before that.
	tow         float64
	previousTOW float64

	// The flags from the most recent HOW word.
	integrity bool
	alert     bool
	antiSpoof bool

	// eph is the ephemeris as assembled so far.  The issue of data fields
	// start at utils.InvalidIOD.
	eph ephemeris.Ephemeris

	// ephemerisReady is set when subframes 1, 2 and 3 form a consistent
	// set that hasn't yet been delivered.
	ephemerisReady bool

	// almanacs holds the most recent almanac of each satellite, indexed by
	// PRN - 1.
	almanacs [utils.MaxPRN]almanac.Almanac

	// lastAlmanac is the PRN of the most recently completed almanac, 0 if
	// there isn't one.
	lastAlmanac int

	// health holds the 6-bit health of each satellite from the almanac
	// pages and the health pages, indexed by PRN - 1.
	health [utils.MaxPRN]int

	// toa and wna are the almanac reference time and week from subframe 5
	// page 25.
	toa float64
	wna int

	iono     iono.Iono
	utcModel utcmodel.Model

	almanacValid     bool
	almanacWeekValid bool
	ionoValid        bool
	utcModelValid    bool
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithParityCheck makes Decode check the parity of each word before
// decoding the subframe.
func WithParityCheck() Option {
	return func(d *Decoder) {
		d.checkParity = true
	}
}

// WithLogLevel sets the level that controls the String output of the
// decoded messages that the decoder logs.
func WithLogLevel(level slog.Level) Option {
	return func(d *Decoder) {
		d.logLevel = level
	}
}

// New creates a decoder for the satellite with the given PRN.  The lookup
// is consulted once to find the satellite's block.  If the logger is nil,
// nothing is logged.
func New(prn int, lookup satellite.BlockLookup, logger *slog.Logger, opts ...Option) *Decoder {
	if logger == nil {
		logger = utils.DiscardLogger()
	}

	block := satellite.Unknown
	if lookup != nil {
		block = lookup.Block(prn)
	}

	d := Decoder{
		prn:      prn,
		block:    block,
		logger:   logger.With("prn", prn),
		logLevel: slog.LevelInfo,
	}
	d.eph.PRN = prn
	d.eph.IODC = utils.InvalidIOD
	d.eph.IODESubframe2 = utils.InvalidIOD
	d.eph.IODESubframe3 = utils.InvalidIOD

	for _, opt := range opts {
		opt(&d)
	}

	return &d
}

// PRN returns the satellite number.
func (d *Decoder) PRN() int {
	return d.prn
}

// Block returns the satellite's block, for example "IIF".
func (d *Decoder) Block() string {
	return d.block
}

// Decode decodes a subframe in wire format and merges it into the state.
// It returns the subframe ID.  An error is returned if the buffer is not
// 40 bytes long or, when parity checking is on, if a word fails the check.
// In either case the state is unchanged.
func (d *Decoder) Decode(raw []byte) (int, error) {
	fr, err := frame.Unpack(raw)
	if err != nil {
		return 0, err
	}

	if d.checkParity {
		if err := frame.CheckParity(raw); err != nil {
			d.logger.Warn("subframe dropped", "error", err)
			return 0, err
		}
	}

	return d.DecodeFrame(fr), nil
}

// DecodeFrame decodes an unpacked subframe and merges it into the state.
// It returns the subframe ID.  An ID outside 1 to 5 leaves the state
// unchanged.
func (d *Decoder) DecodeFrame(fr frame.Frame) int {
	subframeID, update := d.decodeStep(&fr)
	if update != nil {
		d.merge(update)
	}
	return subframeID
}

// decodeStep decodes a subframe without touching the state.  The update is
// one of the subframe message types, or nil if the subframe ID is not
// recognised.
func (d *Decoder) decodeStep(fr *frame.Frame) (int, interface{}) {
	subframeID := header.GetSubframeID(fr)

	var update interface{}
	var err error
	switch subframeID {
	case 1:
		update, err = subframe1.GetMessage(fr, d.logLevel)
	case 2:
		update, err = subframe2.GetMessage(fr, d.logLevel)
	case 3:
		update, err = subframe3.GetMessage(fr, d.logLevel)
	case 4:
		update, err = subframe4.GetMessage(fr, d.logLevel)
	case 5:
		update, err = subframe5.GetMessage(fr, d.logLevel)
	default:
		d.logger.Debug("unknown subframe ID", "subframe", subframeID)
		return subframeID, nil
	}

	if err != nil {
		// Can't happen - the ID has just been checked.
		d.logger.Error("decode", "error", err)
		return subframeID, nil
	}

	return subframeID, update
}

// merge applies a decoded subframe to the state.
func (d *Decoder) merge(update interface{}) {
	consistentBefore := d.IsEphemerisConsistent()

	switch m := update.(type) {
	case *subframe1.Message:
		d.mergeHeader(m.Header)
		d.eph.WeekNumber = m.WeekNumber
		d.eph.CodeOnL2 = m.CodeOnL2
		d.eph.URAIndex = m.URAIndex
		d.eph.SVHealth = m.SVHealth
		d.eph.IODC = m.IODC
		d.eph.L2PDataFlag = m.L2PDataFlag
		d.eph.TGD = m.TGD
		d.eph.TOC = m.TOC
		d.eph.AF2 = m.AF2
		d.eph.AF1 = m.AF1
		d.eph.AF0 = m.AF0
		d.checkEphemeris(1, consistentBefore)

	case *subframe2.Message:
		d.mergeHeader(m.Header)
		d.eph.IODESubframe2 = m.IODE
		d.eph.CRS = m.CRS
		d.eph.DeltaN = m.DeltaN
		d.eph.M0 = m.M0
		d.eph.CUC = m.CUC
		d.eph.Eccentricity = m.Eccentricity
		d.eph.CUS = m.CUS
		d.eph.SqrtA = m.SqrtA
		d.eph.TOE = m.TOE
		d.eph.FitInterval = m.FitInterval
		d.eph.AODO = m.AODO
		d.checkEphemeris(2, consistentBefore)

	case *subframe3.Message:
		d.mergeHeader(m.Header)
		d.eph.CIC = m.CIC
		d.eph.Omega0 = m.Omega0
		d.eph.CIS = m.CIS
		d.eph.I0 = m.I0
		d.eph.CRC = m.CRC
		d.eph.Omega = m.Omega
		d.eph.OmegaDot = m.OmegaDot
		d.eph.IODESubframe3 = m.IODE
		d.eph.IDOT = m.IDOT
		d.checkEphemeris(3, consistentBefore)

	case *subframe4.Message:
		d.mergeHeader(m.Header)
		d.mergeSubframe4(m)

	case *subframe5.Message:
		d.mergeHeader(m.Header)
		d.mergeSubframe5(m)
	}
}

// mergeHeader records the time of week and flags from the HOW word.
func (d *Decoder) mergeHeader(hdr *header.Header) {
	d.towBySubframe[hdr.SubframeID-1] = hdr.TOW
	d.previousTOW = d.tow
	d.tow = hdr.TOW
	d.integrity = hdr.Integrity
	d.alert = hdr.Alert
	d.antiSpoof = hdr.AntiSpoof
	d.logger.Debug("subframe", "subframe", hdr.SubframeID, "tow", hdr.TOW)
}

// checkEphemeris runs the consistency check after subframe 1, 2 or 3 has
// been merged.  The ephemeris is made ready when subframe 3 completes a
// consistent set, or when subframe 1 or 2 makes an inconsistent set
// consistent.  It's withdrawn if the set becomes inconsistent.
func (d *Decoder) checkEphemeris(subframeID int, consistentBefore bool) {
	if !d.IsEphemerisConsistent() {
		d.ephemerisReady = false
		if d.towBySubframe[0] != 0 && d.towBySubframe[1] != 0 && d.towBySubframe[2] != 0 {
			d.logger.Warn("issue of data mismatch",
				"iodc", d.eph.IODC,
				"iode2", d.eph.IODESubframe2,
				"iode3", d.eph.IODESubframe3)
		}
		return
	}

	if subframeID == 3 || !consistentBefore {
		d.ephemerisReady = true
		d.logger.Info("ephemeris ready", "iode", d.eph.IODESubframe2, "week", d.eph.WeekNumber)
	}
}

func (d *Decoder) mergeSubframe4(m *subframe4.Message) {
	switch page := m.Page.(type) {
	case *almanacpage.Message:
		d.mergeAlmanac(page)
	case *subframe4.IonoUTC:
		d.iono = iono.Iono{
			Alpha0: page.Alpha0,
			Alpha1: page.Alpha1,
			Alpha2: page.Alpha2,
			Alpha3: page.Alpha3,
			Beta0:  page.Beta0,
			Beta1:  page.Beta1,
			Beta2:  page.Beta2,
			Beta3:  page.Beta3,
		}
		d.utcModel = utcmodel.Model{
			A0:        page.A0,
			A1:        page.A1,
			TOT:       page.TOT,
			WNT:       page.WNT,
			DeltaTLS:  page.DeltaTLS,
			WNLSF:     page.WNLSF,
			DN:        page.DN,
			DeltaTLSF: page.DeltaTLSF,
		}
		d.ionoValid = true
		d.utcModelValid = true
		d.logger.Info("iono and UTC model ready", "leapSeconds", page.DeltaTLS)
	case *subframe4.Health:
		for i, h := range page.SVHealth {
			d.health[subframe4.FirstAlmanacSVID-1+i] = h
		}
	default:
		d.logger.Debug("subframe 4 page not decoded", "svid", m.SVID, "dataID", m.DataID)
	}
}

func (d *Decoder) mergeSubframe5(m *subframe5.Message) {
	switch page := m.Page.(type) {
	case *almanacpage.Message:
		d.mergeAlmanac(page)
	case *subframe5.ReferenceTime:
		d.toa = page.TOA
		d.wna = page.WNA
		d.almanacWeekValid = true
		for i, h := range page.SVHealth {
			d.health[subframe5.FirstAlmanacSVID-1+i] = h
		}
	default:
		d.logger.Debug("subframe 5 page not decoded", "svid", m.SVID, "dataID", m.DataID)
	}
}

// mergeAlmanac stores a complete almanac page.  The page has already been
// checked to be for a satellite from 1 to 32.  The page's 8-bit health
// goes into the record only; the health table holds the 6-bit values from
// the health pages.
func (d *Decoder) mergeAlmanac(page *almanacpage.Message) {
	d.almanacs[page.SVID-1] = almanac.Almanac{
		PRN:          page.SVID,
		SVHealth:     page.SVHealth,
		Eccentricity: page.Eccentricity,
		TOA:          page.TOA,
		DeltaI:       page.DeltaI,
		OmegaDot:     page.OmegaDot,
		SqrtA:        page.SqrtA,
		Omega0:       page.Omega0,
		Omega:        page.Omega,
		M0:           page.M0,
		AF0:          page.AF0,
		AF1:          page.AF1,
	}
	d.lastAlmanac = page.SVID
	d.almanacValid = true
	d.logger.Debug("almanac", "svid", page.SVID)
}
