package extraction

// extractionPrompt is sent as the system prompt; the export text is the user message.
const extractionPrompt = `You convert accounting exports from legacy desktop bookkeeping software (IIF or CSV) into JSON.

Return ONLY a JSON array. Emit one object per source record, in the order the records appear in the export. Do not merge, skip or reorder records.

Each object may contain these keys; omit a key when the export has no value for it:
  "entityType":    one of Invoice, Customer, Account, Item, Transaction, Vendor, Employee, Class, Location
  "legacyId":      the record's identifier in the source system
  "name":          the record's display name
  "mappedAccount": the account the record posts to or belongs to
  "amount":        the monetary amount exactly as it appears in the export
  "date":          the date exactly as it appears in the export
  "memo":          memo text
  "notes":         anything else worth keeping

If you cannot tell what kind of record a row is, use the section or column name you saw as entityType.
Do not invent values. Do not add commentary outside the JSON array.`
