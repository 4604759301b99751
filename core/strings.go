package core

import (
	"errors"
	"fmt"
	"slices"

	"github.com/exip-go/exip/utils"
)

const (
	DefaultInitialQNameLists int = 60

	// Discriminators written ahead of a value (EXI §7.1.7 String table
	// partitions): 0 and 1 are reserved for local/global hits, anything
	// else is a literal string whose length is the discriminator minus 2.
	stringHitLocal  = 0
	stringHitGlobal = 1
	literalLengthBias = 2
)

var EmptyStringValue = NewStringValueFromString(EmptyString)

type StringCoder interface {
	GetNumberOfStringValues(qnc *QNameContext) int
	Clear()
	SetSharedStrings(sharedStrings []string) error
	IsLocalValuePartitions() bool
}

type StringDecoder interface {
	StringCoder
	AddValue(qnc *QNameContext, value *StringValue) error
	ReadValue(qnc *QNameContext, channel DecoderChannel) (*StringValue, error)
	ReadValueLocalHit(qnc *QNameContext, channel DecoderChannel) (*StringValue, error)
	ReadValueGlobalHit(channel DecoderChannel) (*StringValue, error)
}

type StringEncoder interface {
	StringCoder
	AddValue(qnc *QNameContext, value string) error
	WriteValue(qnc *QNameContext, channel EncoderChannel, value string) error
	IsStringHit(value string) (bool, error)
	GetValueContainer(value string) *ValueContainer
	GetValueContainerSize() int
}

// ValueContainer records where a string value lives in both partitions: its
// owning QName (for the local partition) and its compact IDs in each.
type ValueContainer struct {
	Value         string
	Context       *QNameContext
	LocalValueID  int
	GlobalValueID int
}

func NewValueContainer(value string, qnc *QNameContext, localValueID, globalValueID int) ValueContainer {
	return ValueContainer{
		Value:         value,
		Context:       qnc,
		LocalValueID:  localValueID,
		GlobalValueID: globalValueID,
	}
}

// LocalIDMap records which QName a bounded global-partition slot's value was
// also filed under locally, so eviction can free the matching local entry.
type LocalIDMap struct {
	LocalID int
	Context *QNameContext
}

func NewLocalIDMap(localID int, qnc *QNameContext) LocalIDMap {
	return LocalIDMap{LocalID: localID, Context: qnc}
}

// AbstractStringCoder holds the local value partitions (one slice of string
// values per QName) shared by every decoder/encoder flavor below; the global
// partition differs enough between the unbounded and bounded variants that
// each keeps its own.
type AbstractStringCoder struct {
	StringCoder
	localValuePartitions bool
	localValues          map[QNameContextMapKey][]*StringValue
}

func NewAbstractStringCoder(localValuePartitions bool, initialQNameLists int) *AbstractStringCoder {
	return &AbstractStringCoder{
		localValuePartitions: localValuePartitions,
		localValues:          make(map[QNameContextMapKey][]*StringValue, initialQNameLists),
	}
}

func (c *AbstractStringCoder) GetNumberOfStringValues(qnc *QNameContext) int {
	return len(c.localValues[qnc.GetMapKey()])
}

// Clear empties every local partition's values in place without discarding
// the partitions themselves, so per-QName backing arrays are reused across
// the next document rather than reallocated.
func (c *AbstractStringCoder) Clear() {
	if !c.localValuePartitions {
		return
	}
	for key, values := range c.localValues {
		c.localValues[key] = values[:0]
	}
}

func (c *AbstractStringCoder) IsLocalValuePartitions() bool {
	return c.localValuePartitions
}

func (c *AbstractStringCoder) addLocalValue(qnc *QNameContext, value *StringValue) {
	if !c.localValuePartitions {
		return
	}
	key := qnc.GetMapKey()
	c.localValues[key] = append(c.localValues[key], value)
}

// StringDecoderImpl is the unbounded decoder: once a string is seen it stays
// in both partitions for the lifetime of the stream.
type StringDecoderImpl struct {
	*AbstractStringCoder
	globalValues []*StringValue

	// self lets ReadValue/SetSharedStrings reach BoundedStringDecoderImpl's
	// capacity-aware AddValue override. Struct embedding in Go doesn't
	// dispatch virtually — a call to sd.AddValue from a method promoted
	// from this type always runs StringDecoderImpl.AddValue, even when sd
	// is embedded inside a BoundedStringDecoderImpl — so overriders must
	// reassign self to themselves after construction.
	self StringDecoder
}

func NewStringDecoderImpl(localValuePartitions bool) *StringDecoderImpl {
	return NewStringDecoderImplWithInitialQNameLists(localValuePartitions, DefaultInitialQNameLists)
}

func NewStringDecoderImplWithInitialQNameLists(localValuePartitions bool, initialQNameLists int) *StringDecoderImpl {
	sd := &StringDecoderImpl{
		AbstractStringCoder: NewAbstractStringCoder(localValuePartitions, initialQNameLists),
	}
	sd.self = sd
	return sd
}

// AddValue files a literal miss into both the global and (if enabled) local
// value partitions.
func (sd *StringDecoderImpl) AddValue(qnc *QNameContext, value *StringValue) error {
	sd.globalValues = append(sd.globalValues, value)
	sd.addLocalValue(qnc, value)
	return nil
}

func (sd *StringDecoderImpl) ReadValue(qnc *QNameContext, channel DecoderChannel) (*StringValue, error) {
	disc, err := channel.DecodeUnsignedInteger()
	if err != nil {
		return nil, err
	}

	switch disc {
	case stringHitLocal:
		if !sd.localValuePartitions {
			return nil, errors.New("EXI stream contains local-value hit even though profile options indicate otherwise")
		}
		return sd.ReadValueLocalHit(qnc, channel)

	case stringHitGlobal:
		return sd.ReadValueGlobalHit(channel)

	default:
		literalLen := disc - literalLengthBias
		if literalLen <= 0 {
			return EmptyStringValue, nil
		}

		runes, err := channel.DecodeStringOnly(literalLen)
		if err != nil {
			return nil, err
		}
		value := NewStringValueFromSlice(runes)

		// A miss is filed into both partitions (via self, so a bounded
		// decoder's capacity/length rules apply) so a later occurrence of
		// the same string, anywhere in the document, becomes a hit.
		if err := sd.self.AddValue(qnc, value); err != nil {
			return nil, err
		}
		return value, nil
	}
}

func (sd *StringDecoderImpl) ReadValueLocalHit(qnc *QNameContext, channel DecoderChannel) (*StringValue, error) {
	if !sd.localValuePartitions {
		return nil, errors.New("local value partitions are not used")
	}

	width := utils.GetCodingLength(sd.GetNumberOfStringValues(qnc))
	localID, err := channel.DecodeNBitUnsignedInteger(width)
	if err != nil {
		return nil, err
	}

	lvs, ok := sd.localValues[qnc.GetMapKey()]
	if !ok {
		return nil, fmt.Errorf("no local value partition for %+v", qnc.GetMapKey())
	}
	if localID >= len(lvs) {
		return nil, errors.New("local value ID out of bounds")
	}
	return lvs[localID], nil
}

func (sd *StringDecoderImpl) ReadValueGlobalHit(channel DecoderChannel) (*StringValue, error) {
	width := utils.GetCodingLength(len(sd.globalValues))
	globalID, err := channel.DecodeNBitUnsignedInteger(width)
	if err != nil {
		return nil, err
	}
	if globalID >= len(sd.globalValues) {
		return nil, errors.New("global value ID out of bounds")
	}
	return sd.globalValues[globalID], nil
}

func (sd *StringDecoderImpl) Clear() {
	sd.AbstractStringCoder.Clear()
	sd.globalValues = sd.globalValues[:0]
}

func (sd *StringDecoderImpl) SetSharedStrings(sharedStrings []string) error {
	for _, s := range sharedStrings {
		if err := sd.self.AddValue(nil, NewStringValueFromString(s)); err != nil {
			return err
		}
	}
	return nil
}

// StringEncoderImpl is the unbounded encoder mirroring StringDecoderImpl:
// every distinct value seen is kept, keyed by its raw string, for the rest
// of the stream.
type StringEncoderImpl struct {
	*AbstractStringCoder
	stringValues map[string]ValueContainer

	// self mirrors StringDecoderImpl.self: it lets WriteValue/SetSharedStrings
	// reach BoundedStringEncoderImpl's capacity-aware AddValue override,
	// which an unqualified se.AddValue call from a promoted method cannot.
	self StringEncoder
}

func NewStringEncoderImpl(localValuePartitions bool) *StringEncoderImpl {
	return NewStringEncoderImplWithInitialQNameLists(localValuePartitions, DefaultInitialQNameLists)
}

func NewStringEncoderImplWithInitialQNameLists(localValuePartitions bool, initialQNameLists int) *StringEncoderImpl {
	se := &StringEncoderImpl{
		AbstractStringCoder: NewAbstractStringCoder(localValuePartitions, initialQNameLists),
		stringValues:        map[string]ValueContainer{},
	}
	se.self = se
	return se
}

func (se *StringEncoderImpl) AddValue(qnc *QNameContext, value string) error {
	if utils.ContainsKey(se.stringValues, value) {
		panic("attempt to add duplicate global string value")
	}

	se.stringValues[value] = NewValueContainer(value, qnc, se.GetNumberOfStringValues(qnc), len(se.stringValues))
	se.addLocalValue(qnc, NewStringValueFromString(value))
	return nil
}

func (se *StringEncoderImpl) WriteValue(qnc *QNameContext, channel EncoderChannel, value string) error {
	vc, hit := se.stringValues[value]
	if !hit {
		return se.writeLiteral(qnc, channel, value)
	}

	if se.localValuePartitions && qnc.Equals(vc.Context) {
		if err := channel.EncodeUnsignedInteger(stringHitLocal); err != nil {
			return err
		}
		width := utils.GetCodingLength(se.GetNumberOfStringValues(qnc))
		return channel.EncodeNBitUnsignedInteger(vc.LocalValueID, width)
	}

	if err := channel.EncodeUnsignedInteger(stringHitGlobal); err != nil {
		return err
	}
	width := utils.GetCodingLength(len(se.stringValues))
	return channel.EncodeNBitUnsignedInteger(vc.GlobalValueID, width)
}

func (se *StringEncoderImpl) writeLiteral(qnc *QNameContext, channel EncoderChannel, value string) error {
	runeCount := len([]rune(value))
	if err := channel.EncodeUnsignedInteger(runeCount + literalLengthBias); err != nil {
		return err
	}
	if runeCount == 0 {
		return nil
	}
	if err := channel.EncodeStringOnly(value); err != nil {
		return err
	}
	return se.self.AddValue(qnc, value)
}

func (se *StringEncoderImpl) IsStringHit(value string) (bool, error) {
	return utils.ContainsKey(se.stringValues, value), nil
}

func (se *StringEncoderImpl) GetValueContainer(value string) *ValueContainer {
	if vc, ok := se.stringValues[value]; ok {
		return &vc
	}
	return nil
}

func (se *StringEncoderImpl) GetValueContainerSize() int {
	return len(se.stringValues)
}

func (se *StringEncoderImpl) Clear() {
	se.AbstractStringCoder.Clear()
	se.stringValues = map[string]ValueContainer{}
}

func (se *StringEncoderImpl) SetSharedStrings(sharedStrings []string) error {
	for _, s := range sharedStrings {
		if err := se.self.AddValue(nil, s); err != nil {
			return err
		}
	}
	return nil
}

// BoundedStringDecoderImpl caps the global partition at valuePartitionCapacity
// entries, overwriting the oldest slot (a ring buffer indexed by globalID)
// once it fills, and caps individual values at valueMaxLength characters.
type BoundedStringDecoderImpl struct {
	*StringDecoderImpl
	valueMaxLength         int
	valuePartitionCapacity int
	globalID               int
	localIDMapping         []LocalIDMap
}

func NewBoundedStringDecoderImpl(localValuePartitions bool, valueMaxLength, valuePartitionCapacity int) *BoundedStringDecoderImpl {
	lmapSize := 0
	if valuePartitionCapacity > 0 && localValuePartitions {
		lmapSize = valuePartitionCapacity
	}

	bsd := &BoundedStringDecoderImpl{
		StringDecoderImpl:      NewStringDecoderImpl(localValuePartitions),
		valueMaxLength:         valueMaxLength,
		valuePartitionCapacity: valuePartitionCapacity,
		globalID:               -1,
		localIDMapping:         make([]LocalIDMap, lmapSize),
	}
	bsd.self = bsd
	return bsd
}

func (sd *BoundedStringDecoderImpl) AddValue(qnc *QNameContext, value *StringValue) error {
	clen, err := value.GetCharactersLength()
	if err != nil {
		return err
	}
	if sd.valueMaxLength >= 0 && clen > sd.valueMaxLength {
		return nil
	}

	if sd.valuePartitionCapacity < 0 {
		return sd.StringDecoderImpl.AddValue(qnc, value)
	}
	if sd.valuePartitionCapacity == 0 {
		return nil
	}

	if slices.Contains(sd.globalValues, value) {
		return errors.New("duplicate global string value")
	}

	sd.globalID = (sd.globalID + 1) % sd.valuePartitionCapacity

	if sd.globalID < len(sd.globalValues) {
		sd.globalValues[sd.globalID] = value
	} else {
		sd.globalValues = append(sd.globalValues, value)
	}

	if sd.localValuePartitions {
		sd.localIDMapping[sd.globalID] = NewLocalIDMap(sd.GetNumberOfStringValues(qnc), qnc)
		sd.addLocalValue(qnc, value)
	}
	return nil
}

func (sd *BoundedStringDecoderImpl) Clear() {
	sd.StringDecoderImpl.Clear()
	sd.globalID = -1
}

// BoundedStringEncoderImpl mirrors BoundedStringDecoderImpl: the same ring
// buffer over the global partition, plus globalIDMapping to find and free the
// local entry an evicted global value came from.
type BoundedStringEncoderImpl struct {
	*StringEncoderImpl
	valueMaxLength         int
	valuePartitionCapacity int
	globalID               int
	globalIDMapping        []ValueContainer
}

func NewBoundedStringEncoderImpl(localValuePartitions bool, valueMaxLength, valuePartitionCapacity int) *BoundedStringEncoderImpl {
	bse := &BoundedStringEncoderImpl{
		StringEncoderImpl:      NewStringEncoderImpl(localValuePartitions),
		valueMaxLength:         valueMaxLength,
		valuePartitionCapacity: valuePartitionCapacity,
		globalID:               -1,
		globalIDMapping:        make([]ValueContainer, utils.Max(0, valuePartitionCapacity)),
	}
	bse.self = bse
	return bse
}

func (se *BoundedStringEncoderImpl) AddValue(qnc *QNameContext, value string) error {
	if se.valueMaxLength >= 0 && len([]rune(value)) > se.valueMaxLength {
		return nil
	}

	if se.valuePartitionCapacity < 0 {
		return se.StringEncoderImpl.AddValue(qnc, value)
	}
	if se.valuePartitionCapacity == 0 {
		return nil
	}

	if utils.ContainsKey(se.stringValues, value) {
		return errors.New("duplicate global string value")
	}

	se.globalID = (se.globalID + 1) % se.valuePartitionCapacity
	vc := NewValueContainer(value, qnc, se.GetNumberOfStringValues(qnc), se.globalID)

	if len(se.stringValues) == se.valuePartitionCapacity {
		evicted := se.globalIDMapping[se.globalID]
		if err := se.freeLocalValue(evicted.Context, evicted.LocalValueID); err != nil {
			return err
		}
		delete(se.stringValues, evicted.Value)
	}

	se.stringValues[value] = vc
	se.addLocalValue(qnc, NewStringValueFromString(value))
	se.globalIDMapping[se.globalID] = vc
	return nil
}

// freeLocalValue clears an evicted global value's slot in its local
// partition, so a stale pointer isn't returned by a later local-hit lookup.
func (se *BoundedStringEncoderImpl) freeLocalValue(qnc *QNameContext, localValueID int) error {
	if !se.localValuePartitions {
		return nil
	}

	key := qnc.GetMapKey()
	lvs, ok := se.localValues[key]
	if !ok {
		return fmt.Errorf("no local value partition for %+v", key)
	}
	if localValueID >= len(lvs) {
		return errors.New("local value ID out of bounds")
	}
	if lvs[localValueID] == nil {
		return errors.New("local value already freed")
	}
	lvs[localValueID] = nil
	return nil
}

func (se *BoundedStringEncoderImpl) Clear() {
	se.StringEncoderImpl.Clear()
	se.globalID = -1
}
