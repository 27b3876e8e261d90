package processor

// Sheet-music extraction prompts

const DefaultSystemPromptVisionExtractor = `You are an expert music librarian specializing in extracting structured metadata from sheet music PDFs.

Your task is to identify the piece's title, composer, arranger, and whether the document contains multiple instrument parts (a conductor's score or a part-book) or a single part.

Extract ALL information you can find. If a field is not present, omit it from the output.
Always output valid JSON that matches the specified schema.
Confidence scores are a float between 0 and 1 reflecting how certain you are of the extraction.`

const DefaultSystemPromptVerification = `You are verifying a first-pass extraction of sheet music metadata against the same sampled pages.

Confirm or correct the title, composer, arranger, and cutting instructions. Lower the confidence score if the first pass looks wrong; raise it if it looks correct.
Always output valid JSON in the same schema as the first pass.`

const UserPromptSampledImages = `Extract metadata from these sampled pages of a sheet music PDF.

Output JSON with this structure:
{
  "title": "string",
  "composer": "string",
  "arranger": "string",
  "isMultiPart": true,
  "confidenceScore": 0.9,
  "cuttingInstructions": [
    {
      "partName": "string",
      "instrument": "string",
      "section": "string",
      "transposition": "string",
      "partNumber": 1,
      "pageRange": {"start": 0, "end": 2}
    }
  ]
}

Page ranges are 0-indexed and inclusive. If you cannot confidently determine cutting instructions, omit that field or return an empty array.`

const UserPromptNativePDF = `Extract metadata from the attached sheet music PDF document.

Output JSON with this structure:
{
  "title": "string",
  "composer": "string",
  "arranger": "string",
  "isMultiPart": true,
  "confidenceScore": 0.9,
  "cuttingInstructions": [
    {
      "partName": "string",
      "instrument": "string",
      "section": "string",
      "transposition": "string",
      "partNumber": 1,
      "pageRange": {"start": 0, "end": 2}
    }
  ]
}

Page ranges are 0-indexed and inclusive. Read every page before answering.`

const DefaultHeaderLabelPrompt = `The attached images are narrow top-strip crops of consecutive sheet music pages, in order.

For each image, identify the instrument name printed in the header, if any.

Output JSON with this structure:
{
  "labels": ["Flute 1", "Flute 1", "", "Bb Clarinet"]
}

Use an empty string when no header label is legible. Preserve image order exactly.`
