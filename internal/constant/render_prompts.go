package constant

const (
	// CompositePromptTemplate is filled with the variant placement hint and
	// any merchant prompt override.
	CompositePromptTemplate = `You are a photorealistic interior staging engine.
Place the furniture product from the second image into the room photo from the first image.

Rules:
1. Keep the room's lighting, shadows and perspective consistent.
2. Do not alter the room's walls, floor, windows or existing fixed features.
3. Scale the product realistically for the room.
4. Output a single photorealistic image, no text.

Placement: %s
%s`

	// BackgroundRemovalPrompt isolates the product for compositing.
	BackgroundRemovalPrompt = `Isolate the furniture product in this image on a fully transparent background.
Keep the product pixels untouched: no recoloring, no restyling, no added shadows.
Output a single PNG image with alpha transparency, no text.`

	// CleanupPromptTemplate removes existing furniture from a shopper's
	// room photo. The mask note is appended only when a mask was provided.
	CleanupPromptTemplate = `Remove furniture and loose clutter from this room photo so the space reads as empty.
Preserve walls, floor, ceiling, windows, doors and built-in fixtures exactly.
Fill revealed surfaces plausibly, matching the room's lighting.
Output a single photorealistic image, no text.%s`

	CleanupMaskNote = `
The second image is a mask: only remove objects inside the white region.`
)
